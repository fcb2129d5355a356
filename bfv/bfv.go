// Package bfv implements the secret-key variant of the Brakerski-Fan-Vercauteren
// homomorphic encryption scheme over the RNS polynomial rings of the ring package:
// parameters, plaintext encoding, encryption, decryption, noise measurement and
// key switching.
package bfv
