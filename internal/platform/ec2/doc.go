// Package ec2 implements provisioning.Provider on Amazon EC2 using
// aws-sdk-go-v2.
//
// Launches are a single RunInstances call with MinCount = MaxCount, made
// idempotent with a client token so transient failures can be retried
// without double-launching. Invalid parameters (unknown AMI, instance type
// or key pair) are fatal and never retried.
package ec2
