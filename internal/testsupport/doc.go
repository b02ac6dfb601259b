// Package testsupport holds scripted decoders and fixtures shared by tests.
package testsupport
