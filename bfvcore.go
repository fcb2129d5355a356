/*
Package bfvcore is a pure Go implementation of the core of the secret-key
Brakerski-Fan-Vercauteren (BFV) homomorphic encryption scheme.

The [github.com/tuneinsight/bfvcore/ring] package provides polynomial arithmetic over
RNS rings with NTT-based multiplication, constant-time by default. The
[github.com/tuneinsight/bfvcore/bfv] package builds parameters, plaintext encodings,
encryption, decryption, noise measurement and key switching on top of it.
*/
package bfvcore
