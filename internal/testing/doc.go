// Package testing provides fakes and mocks shared by unit tests.
//
//   - FakeProvider: in-memory compute provider that hands out sequential ids
//   - MockRemote: testify mock of the fleet's remote shell transport
//   - GenerateKeyPair: throwaway ed25519 SSH keys
//
// Usage:
//
//	p := testing.NewFakeProvider("ec2")
//	p.FailLaunch = errors.New("quota exceeded")
package testing
