// internal/adapters/in/cli/recover.go
package cli

import (
	"fmt"
	"log"
	"runtime/debug"

	cartdom "primepicks/internal/domain/cart"
)

// recoverCommand keeps one bad command from killing the session.
// Must be deferred directly by the command runner.
func (s *Shell) recoverCommand(cmd string) {
	if rec := recover(); rec != nil {
		// panic の真因をログに残す
		log.Printf("[recover] PANIC cmd=%q: %v\n%s", cmd, rec, string(debug.Stack()))
		s.writeJSON(errorReply{Error: fmt.Sprintf("internal error: %v", rec), Kind: cartdom.KindInternal})
	}
}
