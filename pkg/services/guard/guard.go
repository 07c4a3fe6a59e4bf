package guard

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNoInteractiveInput is returned by a ConfirmationProvider when no input
// stream is attached, so a guarded deletion can fail fast instead of hanging.
var ErrNoInteractiveInput = errors.New("no interactive input attached")

// ConfirmationProvider asks the operator a yes/no question and blocks until
// an answer arrives.
type ConfirmationProvider interface {
	Confirm(prompt string) (bool, error)
}

// Decision is the outcome of the destructive-action guard. It is computed
// once per tool run and reused for every flagged item in that run.
type Decision struct {
	Proceed         bool
	EffectiveDryRun bool
}

// Decide evaluates whether flagged items may be deleted in this run.
//
// Deletion not requested means no action at all. A requested deletion under
// the global dry-run flag proceeds as a simulation without prompting. A real
// deletion requires an explicit "yes" from the confirmation provider; a
// declined prompt or a missing input stream cancels the deletion path while
// leaving read-only reporting intact.
func Decide(ctx context.Context, deletionRequested, globalDryRun bool, confirmer ConfirmationProvider) Decision {
	log := zerolog.Ctx(ctx)

	if !deletionRequested {
		return Decision{Proceed: false}
	}

	if globalDryRun {
		log.Info().Msg("delete requested together with dry-run; deletions will be simulated")
		return Decision{Proceed: true, EffectiveDryRun: true}
	}

	log.Warn().Msg("delete requested without dry-run; real deletions will be attempted if confirmed")
	confirmed, err := confirmer.Confirm("Are you ABSOLUTELY SURE you want to proceed with REAL deletions?")
	if err != nil {
		if errors.Is(err, ErrNoInteractiveInput) {
			log.Error().Msg("delete requested in a non-interactive environment without dry-run; this is unsafe, deletions aborted")
		} else {
			log.Error().Err(err).Msg("confirmation failed; deletions aborted")
		}
		return Decision{Proceed: false}
	}
	if !confirmed {
		log.Info().Msg("operator cancelled real deletions; nothing will be deleted")
		return Decision{Proceed: false}
	}

	log.Info().Msg("operator confirmed real deletions")
	return Decision{Proceed: true, EffectiveDryRun: false}
}

// TerminalConfirmer reads the operator's answer from an input stream,
// typically stdin. Only the exact answer "yes" (case-insensitive) confirms.
type TerminalConfirmer struct {
	In  io.Reader
	Out io.Writer
}

func (t TerminalConfirmer) Confirm(prompt string) (bool, error) {
	if t.In == nil {
		return false, ErrNoInteractiveInput
	}
	if _, err := fmt.Fprintf(t.Out, "%s (yes/no): ", prompt); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := bufio.NewReader(t.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	answer := strings.TrimSpace(line)
	if err != nil && answer == "" {
		// EOF with nothing typed: stdin is closed or redirected from /dev/null.
		return false, ErrNoInteractiveInput
	}
	return strings.EqualFold(answer, "yes"), nil
}
