// Package sudo detects whether the running program has root privileges and,
// when it does not, restarts it through sudo, doas, pkexec or a custom
// wrapper.
//
//	func main() {
//		if _, err := sudo.WithEnv(context.Background(), "MY_APP_"); err != nil {
//			log.WithError(err).Fatal("escalation failed")
//		}
//		// from here on the program runs as root
//	}
//
// Programs installed as setuid root binaries claim root in place instead of
// being restarted.
//
// Only the variables selected by the configured rules are handed to the
// privileged process, through env(1). GOTRACEBACK always follows so that
// crash reports of the privileged process look like the unprivileged ones.
package sudo
