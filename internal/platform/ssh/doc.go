// Package ssh provides an SSH client for executing commands on fleet instances.
//
// One Client is shared by every instance of a fleet: the private key is
// parsed once and connections are dialled per call. Besides plain command
// execution the client can push files and directories with the scp protocol
// and attach the local terminal to a remote login shell.
package ssh
