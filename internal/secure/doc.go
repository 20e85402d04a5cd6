// Package secure holds secret values in protected memory between the
// moment they arrive from the KeyEnv API and the moment they are used.
//
// It wraps the memguard library. Data stored in a SecureBuffer is:
//
//   - Encrypted at rest in memory (XSalsa20Poly1305)
//   - Protected from swapping via mlock
//   - Fenced by guard pages against overflows
//   - Wiped when the decrypted view is destroyed
//
// The main consumer is `keyenv run`, which keeps fetched secret values
// enclaved until immediately before the child process environment is
// assembled.
//
// # Usage
//
//	buf, err := secure.NewSecureBufferFromString(secret.Value)
//	if err != nil {
//	    return err
//	}
//	defer buf.Destroy()
//
//	view, err := buf.Open()
//	if err != nil {
//	    return err
//	}
//	defer view.Destroy()
//	plaintext := view.Bytes()
//
// Open decrypts on demand; destroy the returned view as soon as the
// plaintext has been consumed. After Destroy on the SecureBuffer itself,
// Open returns ErrBufferDestroyed.
//
// Empty secret values are representable: sealing zero bytes skips the
// enclave entirely (memguard cannot hold a zero-length buffer) and Open
// yields a view with nil Bytes.
//
// # Platform Behavior
//
// Memory locking varies by platform: Linux honors RLIMIT_MEMLOCK, macOS
// works out of the box, Windows uses VirtualLock. When mlock is
// unavailable memguard degrades to standard allocation rather than
// failing, so low-privilege environments (CI containers, restricted
// shells) still work.
//
// # Limits
//
// This keeps plaintext out of core dumps and swap and zeroes it after
// use. It does not defend against an attacker with root on the running
// host, hardware attacks, or CPU side channels.
package secure
