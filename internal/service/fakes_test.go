package service

import (
	"context"
	"sync"

	"github.com/ittop-club/secret-santa-bot/internal/domain"
	"github.com/ittop-club/secret-santa-bot/internal/repository"
)

// In-memory fakes mirroring the repository semantics, including the
// duplicate-key sentinels the real DAOs map unique violations to.

type fakeParticipants struct {
	mu    sync.Mutex
	order []int64
	byID  map[int64]domain.Participant
}

func newFakeParticipants(participants ...domain.Participant) *fakeParticipants {
	f := &fakeParticipants{
		byID: make(map[int64]domain.Participant),
	}
	for _, p := range participants {
		p.Active = true
		f.byID[p.UserID] = p
		f.order = append(f.order, p.UserID)
	}

	return f
}

func (f *fakeParticipants) Upsert(_ context.Context, p domain.Participant) (domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.byID[p.UserID]
	if !ok {
		p.Active = true
		f.byID[p.UserID] = p
		f.order = append(f.order, p.UserID)

		return p, nil
	}

	existing.Handle = p.Handle
	existing.DisplayName = p.DisplayName
	existing.PlatformName = p.PlatformName
	existing.Active = true
	if p.WishText != "" {
		existing.WishText = p.WishText
	}
	f.byID[p.UserID] = existing

	return existing, nil
}

func (f *fakeParticipants) FindByUserID(_ context.Context, userID int64) (domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.byID[userID]
	if !ok {
		return domain.Participant{}, repository.ErrParticipantNotFound
	}

	return p, nil
}

func (f *fakeParticipants) FindByDisplayName(_ context.Context, name string) (domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range f.order {
		if f.byID[id].DisplayName == name {
			return f.byID[id], nil
		}
	}

	return domain.Participant{}, repository.ErrParticipantNotFound
}

func (f *fakeParticipants) ListActive(_ context.Context) ([]domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var active []domain.Participant
	for _, id := range f.order {
		if f.byID[id].Active {
			active = append(active, f.byID[id])
		}
	}

	return active, nil
}

func (f *fakeParticipants) UpdateWishText(_ context.Context, userID int64, wishText string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.byID[userID]
	if !ok {
		return repository.ErrParticipantNotFound
	}
	p.WishText = wishText
	f.byID[userID] = p

	return nil
}

func (f *fakeParticipants) Deactivate(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.byID[userID]
	if !ok {
		return repository.ErrParticipantNotFound
	}
	p.Active = false
	f.byID[userID] = p

	return nil
}

func (f *fakeParticipants) CountAll(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return int64(len(f.byID)), nil
}

func (f *fakeParticipants) CountActive(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, p := range f.byID {
		if p.Active {
			count++
		}
	}

	return count, nil
}

type fakeReveals struct {
	mu      sync.Mutex
	records []domain.Reveal
}

func newFakeReveals() *fakeReveals {
	return &fakeReveals{}
}

func (f *fakeReveals) Create(_ context.Context, reveal domain.Reveal) (domain.Reveal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.records {
		if r.RecipientID == reveal.RecipientID && r.Year == reveal.Year {
			return domain.Reveal{}, repository.ErrAlreadyRevealed
		}
	}
	reveal.ID = uint(len(f.records) + 1)
	f.records = append(f.records, reveal)

	return reveal, nil
}

func (f *fakeReveals) Exists(_ context.Context, recipientID int64, year int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.records {
		if r.RecipientID == recipientID && r.Year == year {
			return true, nil
		}
	}

	return false, nil
}

func (f *fakeReveals) CountForYear(_ context.Context, year int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, r := range f.records {
		if r.Year == year {
			count++
		}
	}

	return count, nil
}

type fakePairings struct {
	mu          sync.Mutex
	assignments []domain.Assignment

	// reveals backs the anti-join of ListUnrevealed, like the real store.
	reveals *fakeReveals

	participants *fakeParticipants
}

func newFakePairings(reveals *fakeReveals, participants *fakeParticipants) *fakePairings {
	return &fakePairings{
		reveals:      reveals,
		participants: participants,
	}
}

func (f *fakePairings) CreateBatch(_ context.Context, assignments []domain.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range assignments {
		for _, existing := range f.assignments {
			if existing.SantaID == a.SantaID && existing.Year == a.Year {
				return repository.ErrSantaAlreadyAssigned
			}
		}
	}
	f.assignments = append(f.assignments, assignments...)

	return nil
}

func (f *fakePairings) CountForYear(_ context.Context, year int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, a := range f.assignments {
		if a.Year == year {
			count++
		}
	}

	return count, nil
}

func (f *fakePairings) FindByRecipient(_ context.Context, recipientID int64, year int) (domain.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range f.assignments {
		if a.RecipientID == recipientID && a.Year == year {
			return a, nil
		}
	}

	return domain.Assignment{}, repository.ErrPairNotFound
}

func (f *fakePairings) ListUnnotified(_ context.Context, year int) ([]domain.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Assignment
	for _, a := range f.assignments {
		if a.Year == year && !a.Notified {
			out = append(out, a)
		}
	}

	return out, nil
}

func (f *fakePairings) ListUnrevealed(ctx context.Context, year int) ([]domain.Assignment, error) {
	f.mu.Lock()
	assignments := append([]domain.Assignment(nil), f.assignments...)
	f.mu.Unlock()

	var out []domain.Assignment
	for _, a := range assignments {
		if a.Year != year {
			continue
		}
		revealed, err := f.reveals.Exists(ctx, a.RecipientID, year)
		if err != nil {
			return nil, err
		}
		if !revealed {
			out = append(out, a)
		}
	}

	return out, nil
}

func (f *fakePairings) MarkNotified(_ context.Context, santaID int64, year int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, a := range f.assignments {
		if a.SantaID == santaID && a.Year == year {
			f.assignments[i].Notified = true

			return nil
		}
	}

	return repository.ErrPairNotFound
}

func (f *fakePairings) ListPairs(ctx context.Context, year int) ([]domain.AssignmentPair, error) {
	f.mu.Lock()
	assignments := append([]domain.Assignment(nil), f.assignments...)
	f.mu.Unlock()

	var out []domain.AssignmentPair
	for _, a := range assignments {
		if a.Year != year {
			continue
		}
		santa, _ := f.participants.FindByUserID(ctx, a.SantaID)
		recipient, _ := f.participants.FindByUserID(ctx, a.RecipientID)
		revealed, _ := f.reveals.Exists(ctx, a.RecipientID, year)
		out = append(out, domain.AssignmentPair{
			SantaID:       a.SantaID,
			RecipientID:   a.RecipientID,
			SantaName:     santa.DisplayName,
			RecipientName: recipient.DisplayName,
			RecipientWish: recipient.WishText,
			Notified:      a.Notified,
			Revealed:      revealed,
		})
	}

	return out, nil
}

func (f *fakePairings) ClearYear(_ context.Context, year int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var kept []domain.Assignment
	for _, a := range f.assignments {
		if a.Year != year {
			kept = append(kept, a)
		}
	}
	f.assignments = kept

	f.reveals.mu.Lock()
	var keptReveals []domain.Reveal
	for _, r := range f.reveals.records {
		if r.Year != year {
			keptReveals = append(keptReveals, r)
		}
	}
	f.reveals.records = keptReveals
	f.reveals.mu.Unlock()

	return nil
}

// fakeMessenger records outbound sends and can fail for chosen recipients.
type fakeMessenger struct {
	mu      sync.Mutex
	sent    map[int64][]string
	failFor map[int64]error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		sent:    make(map[int64][]string),
		failFor: make(map[int64]error),
	}
}

func (f *fakeMessenger) Send(_ context.Context, userID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failFor[userID]; err != nil {
		return err
	}
	f.sent[userID] = append(f.sent[userID], text)

	return nil
}

func (f *fakeMessenger) sentTo(userID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.sent[userID]...)
}

func (f *fakeMessenger) totalSent() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for _, msgs := range f.sent {
		total += len(msgs)
	}

	return total
}
