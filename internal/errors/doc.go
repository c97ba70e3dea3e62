// Package errors is the error vocabulary of mcpkit.
//
// It re-exports the [github.com/cockroachdb/errors] constructors (New, Newf,
// Wrap, Wrapf, Is, As) so call sites import one package, and adds:
//
//   - sentinels for the conditions commands branch on, such as
//     [ErrUnknownAgent], [ErrUnknownServer], [ErrSelectionAborted] and
//     [ErrInteractionRequired];
//   - [ExitError], which carries the process exit code and a one-line
//     suggestion printed under the message;
//   - [AmbiguousError] for removal names matching several servers;
//   - [Structured], the {"error": {...}} object printed in --json mode, with
//     a stable code per sentinel.
//
// Exit codes: 0 success, 1 [ExitUser] (bad input, aborted picker, invalid
// config), 2 [ExitSystem] (I/O, network and anything unclassified).
//
//	if errors.Is(err, errors.ErrUnknownAgent) {
//		return errors.NewUserError(err, "Run 'mcpkit agents' to list agents")
//	}
package errors
