package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/partspoint/backend/internal/ai"
	"github.com/partspoint/backend/internal/models"
)

// fakeKnowledgeRepo is an in-memory, instrumented knowledge repository.
// Per-stage results and errors are scripted; calls are recorded in order.
type fakeKnowledgeRepo struct {
	phraseResults  []models.KnowledgeEntry
	phraseErr      error
	keywordResults map[bool][]models.KnowledgeEntry // keyed by approvedOnly
	keywordErr     map[bool]error
	topResults     []models.KnowledgeEntry
	topErr         error

	calls []string
}

func newFakeKnowledgeRepo() *fakeKnowledgeRepo {
	return &fakeKnowledgeRepo{
		keywordResults: make(map[bool][]models.KnowledgeEntry),
		keywordErr:     make(map[bool]error),
	}
}

func (f *fakeKnowledgeRepo) Create(*models.KnowledgeEntry) error { return errors.New("read-only") }
func (f *fakeKnowledgeRepo) Update(*models.KnowledgeEntry) error { return errors.New("read-only") }
func (f *fakeKnowledgeRepo) Delete(string) error                 { return errors.New("read-only") }

func (f *fakeKnowledgeRepo) GetByID(string) (*models.KnowledgeEntry, error) {
	return nil, errors.New("not found")
}

func (f *fakeKnowledgeRepo) GetByTitle(string) (*models.KnowledgeEntry, error) {
	return nil, errors.New("not found")
}

func (f *fakeKnowledgeRepo) SearchPhrase(phrase string, approvedOnly bool, limit int) ([]models.KnowledgeEntry, error) {
	f.calls = append(f.calls, "phrase")
	return f.phraseResults, f.phraseErr
}

func (f *fakeKnowledgeRepo) SearchAnyKeyword(keywords []string, approvedOnly bool, limit int) ([]models.KnowledgeEntry, error) {
	if approvedOnly {
		f.calls = append(f.calls, "keyword-approved")
	} else {
		f.calls = append(f.calls, "keyword-all")
	}
	return f.keywordResults[approvedOnly], f.keywordErr[approvedOnly]
}

func (f *fakeKnowledgeRepo) TopByConfidence(limit int) ([]models.KnowledgeEntry, error) {
	f.calls = append(f.calls, "top")
	return f.topResults, f.topErr
}

// fakeLogRepo records interaction log writes and feedback updates.
type fakeLogRepo struct {
	mu       sync.Mutex
	created  []*models.AIInteractionLog
	logs     []models.AIInteractionLog
	createFn func(*models.AIInteractionLog) error
	updateFn func(string, int, string) error
	sinceErr error
}

func (f *fakeLogRepo) Create(log *models.AIInteractionLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createFn != nil {
		if err := f.createFn(log); err != nil {
			return err
		}
	}
	f.created = append(f.created, log)
	return nil
}

func (f *fakeLogRepo) GetByID(id string) (*models.AIInteractionLog, error) {
	return nil, errors.New("not found")
}

func (f *fakeLogRepo) UpdateFeedback(id string, satisfaction int, feedback string) error {
	if f.updateFn != nil {
		return f.updateFn(id, satisfaction, feedback)
	}
	return nil
}

func (f *fakeLogRepo) GetSince(since time.Time) ([]models.AIInteractionLog, error) {
	if f.sinceErr != nil {
		return nil, f.sinceErr
	}
	return f.logs, nil
}

func (f *fakeLogRepo) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

// fakeGenerator scripts the answer-generation collaborator.
type fakeGenerator struct {
	response *ai.GenerateResponse
	err      error
	panics   bool
	lastReq  ai.GenerateRequest
	calls    int
}

func (f *fakeGenerator) GenerateAnswer(ctx context.Context, req ai.GenerateRequest) (*ai.GenerateResponse, error) {
	f.calls++
	f.lastReq = req
	if f.panics {
		panic("generator exploded")
	}
	return f.response, f.err
}
