package service

import (
	"context"
	"sync"

	"giveaway-offers-backend/internal/features/participation/models"
	"giveaway-offers-backend/internal/features/participation/repository"
)

// fakeRepo is an in-memory repository with knobs for lost writes and errors.
type fakeRepo struct {
	mu   sync.Mutex
	data map[string]models.Participation

	puts []models.Participation
	gets int

	// dropWrites makes the first n writes report success without storing.
	dropWrites int
	// putErrs and getErrs are consumed one per call; nil entries succeed.
	putErrs []error
	getErrs []error

	// putHook runs before every write, outside the lock.
	putHook func(ctx context.Context) error
}

var _ repository.ParticipationRepository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{data: map[string]models.Participation{}}
}

func (f *fakeRepo) Put(ctx context.Context, token string, p *models.Participation) error {
	if f.putHook != nil {
		if err := f.putHook(ctx); err != nil {
			return err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.puts = append(f.puts, *p)
	if len(f.putErrs) > 0 {
		err := f.putErrs[0]
		f.putErrs = f.putErrs[1:]
		if err != nil {
			return err
		}
	}
	if f.dropWrites > 0 {
		f.dropWrites--
		return nil
	}
	f.data[token] = *p
	return nil
}

func (f *fakeRepo) Get(_ context.Context, token string) (*models.Participation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.gets++
	if len(f.getErrs) > 0 {
		err := f.getErrs[0]
		f.getErrs = f.getErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	p, ok := f.data[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (f *fakeRepo) ListByPrize(_ context.Context, prizeID string) ([]*models.Participation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := []*models.Participation{}
	for _, p := range f.data {
		if p.PrizeID == prizeID {
			p := p
			items = append(items, &p)
		}
	}
	repository.SortBySubmission(items)
	return items, nil
}

func (f *fakeRepo) Ping(context.Context) error { return nil }

func (f *fakeRepo) Close() error { return nil }

func (f *fakeRepo) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.puts)
}

func (f *fakeRepo) seed(p models.Participation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[p.Token] = p
}

func (f *fakeRepo) stored(token string) (models.Participation, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.data[token]
	return p, ok
}

type sequenceTokens struct {
	mu   sync.Mutex
	next int
}

func (s *sequenceTokens) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return "tok-" + string(rune('a'+s.next-1))
}

type panicTokens struct{}

func (panicTokens) Generate() string { panic("entropy exhausted") }

type recordingNavigator struct {
	mu     sync.Mutex
	opened []string
	err    error
}

func (n *recordingNavigator) Open(_ context.Context, offerURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.opened = append(n.opened, offerURL)
	return n.err
}

func (n *recordingNavigator) urls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.opened...)
}
