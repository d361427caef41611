// Package naming derives provider resource names from cluster names.
//
// Instance names follow the pattern {cluster}-{5char}. The random suffix
// keeps names unique when a cluster grows or shrinks, and the cluster part
// is reduced to characters every provider accepts in a hostname.
package naming
