package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"server/internal/credentials"
	"server/internal/domain"
	"server/internal/providers/image"
)

type memPlaylistRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Playlist
}

func newMemPlaylistRepo(playlists ...*domain.Playlist) *memPlaylistRepo {
	r := &memPlaylistRepo{byID: make(map[string]*domain.Playlist)}
	for _, p := range playlists {
		r.byID[p.ID] = p
	}
	return r
}

func (r *memPlaylistRepo) UpsertByURL(ctx context.Context, p *domain.Playlist) (*domain.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = p
	return p, nil
}

func (r *memPlaylistRepo) GetByID(ctx context.Context, id string) (*domain.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *memPlaylistRepo) ListByUser(ctx context.Context, userID string) ([]domain.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Playlist
	for _, p := range r.byID {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type memVideoRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Video
}

func newMemVideoRepo(videos ...*domain.Video) *memVideoRepo {
	r := &memVideoRepo{byID: make(map[string]*domain.Video)}
	for _, v := range videos {
		r.byID[v.ID] = v
	}
	return r
}

func (r *memVideoRepo) UpsertBySourceID(ctx context.Context, v *domain.Video) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[v.ID] = v
	return v, nil
}

func (r *memVideoRepo) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *v
	return &clone, nil
}

func (r *memVideoRepo) ListByPlaylist(ctx context.Context, playlistID string) ([]domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Video
	for _, v := range r.byID {
		if v.PlaylistID == playlistID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *memVideoRepo) SetTranscript(ctx context.Context, videoID, transcript string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.byID[videoID]; ok && !v.HasTranscript() {
		v.Transcript = &transcript
	}
	return nil
}

type memInfographicRepo struct {
	mu      sync.Mutex
	byVideo map[string]*domain.Infographic
}

func newMemInfographicRepo() *memInfographicRepo {
	return &memInfographicRepo{byVideo: make(map[string]*domain.Infographic)}
}

func (r *memInfographicRepo) GetByVideoID(ctx context.Context, videoID string) (*domain.Infographic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ig, ok := r.byVideo[videoID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *ig
	return &clone, nil
}

func (r *memInfographicRepo) UpsertStatus(ctx context.Context, videoID string, status domain.InfographicStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ig, ok := r.byVideo[videoID]; ok {
		ig.Status = status
		return nil
	}
	r.byVideo[videoID] = &domain.Infographic{ID: "ig-" + videoID, VideoID: videoID, Status: status}
	return nil
}

func (r *memInfographicRepo) Complete(ctx context.Context, videoID, imageURL, analysisReport, designPrompt string) (*domain.Infographic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ig, ok := r.byVideo[videoID]
	if !ok {
		ig = &domain.Infographic{ID: "ig-" + videoID, VideoID: videoID}
		r.byVideo[videoID] = ig
	}
	ig.ImageURL = imageURL
	ig.AnalysisReport = analysisReport
	ig.DesignPrompt = designPrompt
	ig.Status = domain.InfographicStatusCompleted
	clone := *ig
	return &clone, nil
}

func (r *memInfographicRepo) ListByPlaylist(ctx context.Context, playlistID string) ([]domain.Infographic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Infographic
	for _, ig := range r.byVideo {
		out = append(out, *ig)
	}
	return out, nil
}

type memJobRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.ProcessingJob
	progress []int
	finished chan string
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{
		byID:     make(map[string]*domain.ProcessingJob),
		finished: make(chan string, 4),
	}
}

func (r *memJobRepo) Create(ctx context.Context, job *domain.ProcessingJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.ID == "" {
		job.ID = fmt.Sprintf("job-%d", len(r.byID)+1)
	}
	clone := *job
	r.byID[job.ID] = &clone
	return nil
}

func (r *memJobRepo) GetByID(ctx context.Context, id string) (*domain.ProcessingJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *job
	return &clone, nil
}

func (r *memJobRepo) SetStatus(ctx context.Context, id string, status domain.JobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.byID[id]; ok {
		job.Status = status
	}
	return nil
}

func (r *memJobRepo) SetProgress(ctx context.Context, id string, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.byID[id]; ok {
		job.Progress = progress
		r.progress = append(r.progress, progress)
	}
	return nil
}

func (r *memJobRepo) SetCurrent(ctx context.Context, id string, videoID *string, step string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.byID[id]; ok {
		job.CurrentVideoID = videoID
		job.CurrentStep = &step
	}
	return nil
}

func (r *memJobRepo) SetStep(ctx context.Context, id string, step string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.byID[id]; ok {
		job.CurrentStep = &step
	}
	return nil
}

func (r *memJobRepo) Finish(ctx context.Context, id string, step string) error {
	r.mu.Lock()
	if job, ok := r.byID[id]; ok {
		job.Status = domain.JobStatusCompleted
		job.Progress = 100
		job.CurrentVideoID = nil
		job.CurrentStep = &step
	}
	r.mu.Unlock()
	r.finished <- id
	return nil
}

func (r *memJobRepo) ListByPlaylists(ctx context.Context, playlistIDs []string) ([]domain.ProcessingJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ProcessingJob
	for _, job := range r.byID {
		for _, pid := range playlistIDs {
			if job.PlaylistID == pid {
				out = append(out, *job)
			}
		}
	}
	return out, nil
}

func (r *memJobRepo) progressHistory() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.progress...)
}

type stubTranscripts struct {
	mu     sync.Mutex
	texts  map[string]string
	failOn map[string]bool
	tokens []string
}

func (s *stubTranscripts) Get(ctx context.Context, videoID, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, token)
	if s.failOn[videoID] {
		return "", domain.ErrEmptyTranscript
	}
	if text, ok := s.texts[videoID]; ok {
		return text, nil
	}
	return "transcript of " + videoID, nil
}

type stubAnalyzer struct {
	mu         sync.Mutex
	calls      int
	analyzeErr error
}

func (s *stubAnalyzer) AnalyzeContent(ctx context.Context, transcript, apiKey string, opts domain.InfographicOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.analyzeErr != nil {
		return "", s.analyzeErr
	}
	return "report: " + transcript, nil
}

func (s *stubAnalyzer) GenerateDesignPrompt(ctx context.Context, report, apiKey string, opts domain.InfographicOptions) (string, error) {
	return "prompt: " + report, nil
}

type stubImages struct {
	generateErr error
}

func (s *stubImages) Generate(ctx context.Context, req image.GenerateRequest) (string, error) {
	if s.generateErr != nil {
		return "", s.generateErr
	}
	return "https://cdn.example.com/" + req.APIKey + ".png", nil
}

func (s *stubImages) Download(ctx context.Context, imageURL string) ([]byte, error) {
	return []byte("png"), nil
}

type fixture struct {
	playlists    *memPlaylistRepo
	videos       *memVideoRepo
	infographics *memInfographicRepo
	jobs         *memJobRepo
	transcripts  *stubTranscripts
	analyzer     *stubAnalyzer
	images       *stubImages
	creds        *credentials.JobStore
	svc          *InfographicService
}

func newFixture() *fixture {
	f := &fixture{
		playlists: newMemPlaylistRepo(
			&domain.Playlist{ID: "pl-1", UserID: "user-1", Title: "List One"},
		),
		videos: newMemVideoRepo(
			&domain.Video{ID: "vid-1", PlaylistID: "pl-1", URL: "https://www.youtube.com/watch?v=a1"},
			&domain.Video{ID: "vid-2", PlaylistID: "pl-1", URL: "https://www.youtube.com/watch?v=a2"},
			&domain.Video{ID: "vid-3", PlaylistID: "pl-1", URL: "https://www.youtube.com/watch?v=a3"},
		),
		infographics: newMemInfographicRepo(),
		jobs:         newMemJobRepo(),
		transcripts:  &stubTranscripts{texts: map[string]string{}, failOn: map[string]bool{}},
		analyzer:     &stubAnalyzer{},
		images:       &stubImages{},
		creds:        credentials.NewJobStore(),
	}
	f.svc = NewInfographicService(
		f.playlists, f.videos, f.infographics, f.jobs,
		f.transcripts, f.analyzer, f.images,
		f.creds, nil, zerolog.Nop(),
	)
	return f
}

func (f *fixture) waitForFinish(t *testing.T) string {
	t.Helper()
	select {
	case id := <-f.jobs.finished:
		return id
	case <-time.After(5 * time.Second):
		t.Fatal("job never finished")
		return ""
	}
}

var testKeys = credentials.Keys{
	ApifyAPIToken:    "apify-key",
	GeminiAPIKey:     "gemini-key",
	AtlasCloudAPIKey: "atlas-key",
}

func TestCreateJobValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.CreateJob(ctx, "user-1", "pl-1", nil, testKeys, nil); !errors.Is(err, domain.ErrNoVideosSelected) {
		t.Errorf("empty selection: err = %v, want ErrNoVideosSelected", err)
	}
	if _, err := f.svc.CreateJob(ctx, "user-2", "pl-1", []string{"vid-1"}, testKeys, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("foreign playlist: err = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.CreateJob(ctx, "user-1", "pl-404", []string{"vid-1"}, testKeys, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown playlist: err = %v, want ErrNotFound", err)
	}
}

func TestJobCompletesAllVideos(t *testing.T) {
	f := newFixture()

	job, err := f.svc.CreateJob(context.Background(), "user-1", "pl-1",
		[]string{"vid-1", "vid-2", "vid-3"}, testKeys, &domain.InfographicOptions{Language: domain.LanguageEnglish})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if job.Status != domain.JobStatusPending {
		t.Errorf("initial status = %q, want PENDING", job.Status)
	}
	f.waitForFinish(t)

	done, err := f.jobs.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if done.Status != domain.JobStatusCompleted || done.Progress != 100 {
		t.Errorf("job = %q/%d, want COMPLETED/100", done.Status, done.Progress)
	}
	if done.CurrentVideoID != nil {
		t.Errorf("CurrentVideoID = %v, want nil after completion", *done.CurrentVideoID)
	}

	for _, vid := range []string{"vid-1", "vid-2", "vid-3"} {
		ig, err := f.infographics.GetByVideoID(context.Background(), vid)
		if err != nil {
			t.Fatalf("infographic %s: %v", vid, err)
		}
		if ig.Status != domain.InfographicStatusCompleted || ig.ImageURL == "" {
			t.Errorf("infographic %s = %q url=%q", vid, ig.Status, ig.ImageURL)
		}
	}

	if f.creds.Len() != 0 {
		t.Errorf("credentials left in store: %d", f.creds.Len())
	}
}

func TestProgressIsMonotonicAndCountsFailures(t *testing.T) {
	f := newFixture()
	f.transcripts.failOn["vid-2"] = true

	job, err := f.svc.CreateJob(context.Background(), "user-1", "pl-1",
		[]string{"vid-1", "vid-2", "vid-3"}, testKeys, nil)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	f.waitForFinish(t)

	history := f.jobs.progressHistory()
	if len(history) != 3 {
		t.Fatalf("progress updates = %v, want 3 entries", history)
	}
	want := []int{33, 67, 100}
	for i, p := range history {
		if p != want[i] {
			t.Errorf("progress[%d] = %d, want %d", i, p, want[i])
		}
		if i > 0 && p < history[i-1] {
			t.Errorf("progress decreased: %v", history)
		}
	}

	done, _ := f.jobs.GetByID(context.Background(), job.ID)
	if done.Status != domain.JobStatusCompleted {
		t.Errorf("job status = %q, want COMPLETED despite failure", done.Status)
	}
}

func TestVideoFailureIsIsolated(t *testing.T) {
	f := newFixture()
	f.transcripts.failOn["vid-1"] = true

	_, err := f.svc.CreateJob(context.Background(), "user-1", "pl-1",
		[]string{"vid-1", "vid-2"}, testKeys, nil)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	f.waitForFinish(t)

	failed, err := f.infographics.GetByVideoID(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("failed infographic: %v", err)
	}
	if failed.Status != domain.InfographicStatusFailed {
		t.Errorf("vid-1 status = %q, want FAILED", failed.Status)
	}
	if failed.ImageURL != "" {
		t.Errorf("vid-1 image url = %q, want empty", failed.ImageURL)
	}

	ok, err := f.infographics.GetByVideoID(context.Background(), "vid-2")
	if err != nil {
		t.Fatalf("second infographic: %v", err)
	}
	if ok.Status != domain.InfographicStatusCompleted {
		t.Errorf("vid-2 status = %q, want COMPLETED", ok.Status)
	}
}

func TestImageTimeoutMarksVideoFailedJobCompletes(t *testing.T) {
	f := newFixture()
	f.images.generateErr = context.DeadlineExceeded

	job, err := f.svc.CreateJob(context.Background(), "user-1", "pl-1", []string{"vid-1"}, testKeys, nil)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	f.waitForFinish(t)

	ig, err := f.infographics.GetByVideoID(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("infographic: %v", err)
	}
	if ig.Status != domain.InfographicStatusFailed {
		t.Errorf("status = %q, want FAILED", ig.Status)
	}
	if ig.ImageURL != "" {
		t.Errorf("image url = %q, want empty after timeout", ig.ImageURL)
	}

	done, _ := f.jobs.GetByID(context.Background(), job.ID)
	if done.Status != domain.JobStatusCompleted || done.Progress != 100 {
		t.Errorf("job = %q/%d, want COMPLETED/100", done.Status, done.Progress)
	}
	if f.creds.Len() != 0 {
		t.Errorf("credentials left in store: %d", f.creds.Len())
	}
}

func TestAnalyzerFailureMarksVideoFailed(t *testing.T) {
	f := newFixture()
	f.analyzer.analyzeErr = errors.New("model overloaded")

	job, err := f.svc.CreateJob(context.Background(), "user-1", "pl-1", []string{"vid-1", "vid-2"}, testKeys, nil)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	f.waitForFinish(t)

	for _, vid := range []string{"vid-1", "vid-2"} {
		ig, err := f.infographics.GetByVideoID(context.Background(), vid)
		if err != nil {
			t.Fatalf("infographic %s: %v", vid, err)
		}
		if ig.Status != domain.InfographicStatusFailed || ig.ImageURL != "" {
			t.Errorf("infographic %s = %q url=%q, want FAILED with empty url", vid, ig.Status, ig.ImageURL)
		}
	}

	done, _ := f.jobs.GetByID(context.Background(), job.ID)
	if done.Status != domain.JobStatusCompleted || done.Progress != 100 {
		t.Errorf("job = %q/%d, want COMPLETED/100", done.Status, done.Progress)
	}
}

func TestZeroKeysMarkVideoFailed(t *testing.T) {
	f := newFixture()

	job := &domain.ProcessingJob{PlaylistID: "pl-1", VideoIDs: []string{"vid-1"}, Status: domain.JobStatusPending}
	if err := f.jobs.Create(context.Background(), job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.creds.Put(job.ID, credentials.Keys{}, nil)
	f.svc.processJob(job.ID)

	ig, err := f.infographics.GetByVideoID(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("infographic: %v", err)
	}
	if ig.Status != domain.InfographicStatusFailed {
		t.Errorf("status = %q, want FAILED", ig.Status)
	}

	f.transcripts.mu.Lock()
	scraped := len(f.transcripts.tokens)
	f.transcripts.mu.Unlock()
	if scraped != 0 {
		t.Errorf("pipeline ran %d transcript calls with no credentials", scraped)
	}
	if _, _, ok := f.creds.Get(job.ID); ok {
		t.Error("credentials not purged")
	}
}

func TestCompletedVideoIsSkipped(t *testing.T) {
	f := newFixture()
	if _, err := f.infographics.Complete(context.Background(), "vid-1", "https://done.png", "r", "p"); err != nil {
		t.Fatalf("seed infographic: %v", err)
	}

	_, err := f.svc.CreateJob(context.Background(), "user-1", "pl-1", []string{"vid-1"}, testKeys, nil)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	f.waitForFinish(t)

	f.analyzer.mu.Lock()
	calls := f.analyzer.calls
	f.analyzer.mu.Unlock()
	if calls != 0 {
		t.Errorf("analyzer called %d times for a completed video, want 0", calls)
	}

	ig, _ := f.infographics.GetByVideoID(context.Background(), "vid-1")
	if ig.ImageURL != "https://done.png" {
		t.Errorf("existing artifact overwritten: %q", ig.ImageURL)
	}
}

func TestPipelineUsesJobCredentials(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateJob(context.Background(), "user-1", "pl-1", []string{"vid-1"}, testKeys, nil)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	f.waitForFinish(t)

	f.transcripts.mu.Lock()
	tokens := append([]string(nil), f.transcripts.tokens...)
	f.transcripts.mu.Unlock()
	if len(tokens) != 1 || tokens[0] != "apify-key" {
		t.Errorf("transcript tokens = %v, want the job's scraper token", tokens)
	}

	ig, _ := f.infographics.GetByVideoID(context.Background(), "vid-1")
	if ig.ImageURL != "https://cdn.example.com/atlas-key.png" {
		t.Errorf("image generated with wrong key: %q", ig.ImageURL)
	}
}

func TestGetJobOwnership(t *testing.T) {
	f := newFixture()
	job, err := f.svc.CreateJob(context.Background(), "user-1", "pl-1", []string{"vid-1"}, testKeys, nil)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	f.waitForFinish(t)

	if _, err := f.svc.GetJob(context.Background(), "user-1", job.ID); err != nil {
		t.Errorf("owner GetJob: %v", err)
	}
	if _, err := f.svc.GetJob(context.Background(), "user-2", job.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("foreign GetJob: err = %v, want ErrNotFound", err)
	}
}

func TestListJobsJoinsPlaylistTitles(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateJob(context.Background(), "user-1", "pl-1", []string{"vid-1"}, testKeys, nil)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	f.waitForFinish(t)

	jobs, err := f.svc.ListJobs(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(jobs))
	}
	if jobs[0].PlaylistTitle != "List One" {
		t.Errorf("PlaylistTitle = %q", jobs[0].PlaylistTitle)
	}

	other, err := f.svc.ListJobs(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("ListJobs(user-2): %v", err)
	}
	if len(other) != 0 {
		t.Errorf("foreign user sees %d jobs", len(other))
	}
}

func TestAbandonedJobPurgesNothingAndStops(t *testing.T) {
	f := newFixture()

	// No credentials parked for this job id; the pipeline must bail out
	// without touching any infographic.
	job := &domain.ProcessingJob{PlaylistID: "pl-1", VideoIDs: []string{"vid-1"}, Status: domain.JobStatusPending}
	if err := f.jobs.Create(context.Background(), job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.svc.processJob(job.ID)

	if _, err := f.infographics.GetByVideoID(context.Background(), "vid-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("infographic created for abandoned job: %v", err)
	}
	stored, _ := f.jobs.GetByID(context.Background(), job.ID)
	if stored.Status != domain.JobStatusPending {
		t.Errorf("status = %q, want PENDING", stored.Status)
	}
}
