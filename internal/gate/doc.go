// Package gate implements the Rate & Signature Gate (C8): stacked
// per-IP and per-wallet rate limiters in front of every mutating
// operation, plus Ed25519 wallet-signature verification over a
// canonical request payload.
package gate
