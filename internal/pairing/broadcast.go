package pairing

// broadcastCount sends the problem's active count to every session in its sequence.
// A recipient that cannot be reached is skipped; the fan-out always completes.
// Callers hold e.mu.
func (e *Engine) broadcastCount(problemID string) {
	recipients := e.registry.queue(problemID)
	if len(recipients) == 0 {
		return
	}

	payload := encode(CountUpdate{Type: CountUpdateType, Count: e.registry.ActiveCount(problemID)})
	for _, s := range recipients {
		if err := s.send(payload); err != nil {
			e.logger.Debug("Skipping unreachable count recipient",
				"problem_id", problemID,
				"session_id", s.ID,
				"error", err)
		}
	}
}
