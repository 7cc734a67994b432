package membership

import "agora/internal/models"

// UniqueSenders walks messages in order and returns each distinct sender
// once, keeping the first occurrence. Senders whose id is in exclude are
// dropped, as are messages whose sender did not resolve.
func UniqueSenders(messages []models.Message, exclude []uint) []models.Sender {
	skip := make(map[uint]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	senders := make([]models.Sender, 0)
	seen := make(map[uint]struct{})
	for _, m := range messages {
		if m.Sender == nil || m.Sender.ID == 0 {
			continue
		}
		id := m.Sender.ID
		if _, dup := seen[id]; dup {
			continue
		}
		if _, excluded := skip[id]; excluded {
			continue
		}
		seen[id] = struct{}{}
		senders = append(senders, models.Sender{
			ID:       id,
			Username: m.Sender.Username,
			Avatar:   m.Sender.Avatar,
		})
	}
	return senders
}
