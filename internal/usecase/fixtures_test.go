package usecase_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"jobmatch/internal/docstore"
	"jobmatch/internal/domain/geo"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/match"
	"jobmatch/internal/domain/seeker"

	"github.com/stretchr/testify/require"
)

var jakarta = geo.Point{Latitude: -6.2, Longitude: 106.8}

func newPosting(employerID string, at geo.Point, skills ...string) job.Posting {
	if len(skills) == 0 {
		skills = []string{"go", "sql"}
	}
	return job.Posting{
		EmployerID:      employerID,
		Title:           "Backend Engineer",
		Skills:          skills,
		EmploymentType:  job.EmploymentFullTime,
		ExperienceLevel: job.ExperienceMid,
		Salary:          job.Salary{Amount: 10000, Type: job.SalaryMonthly, Currency: "USD"},
		Locations:       []job.Location{{Address: "Jakarta", Coordinates: at}},
	}
}

func newProfile(at geo.Point, skills ...string) seeker.Profile {
	if len(skills) == 0 {
		skills = []string{"go", "sql"}
	}
	return seeker.Profile{
		Skills:          skills,
		ExperienceYears: 4,
		CurrentLocation: at,
		SearchRadiusKm:  10,
		PreferredSalary: seeker.PreferredSalary{Amount: 100000, Type: job.SalaryAnnual},
	}
}

// plainStore hides optional interfaces such as docstore.UniqueCreator.
type plainStore struct {
	docstore.Store
}

type fakeCache struct {
	mu        sync.Mutex
	available bool
	data      map[string][]byte
	locks     map[string]string
	hits      int
	// getErr fails every read.
	getErr error
	// takeover hands every granted lock to another owner right away, as if
	// it expired and was re-acquired.
	takeover bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{available: true, data: map[string][]byte{}, locks: map[string]string{}}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return false, c.getErr
	}
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, out)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	delete(c.locks, key)
	return nil
}

func (c *fakeCache) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *fakeCache) SetIfNotExists(_ context.Context, key string, value string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.available {
		return false, nil
	}
	if _, held := c.locks[key]; held {
		return false, nil
	}
	c.locks[key] = value
	if c.takeover {
		c.locks[key] = "other-owner"
	}
	return true, nil
}

func (c *fakeCache) DeleteIfValue(_ context.Context, key, value string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, held := c.locks[key]; !held || v != value {
		return false, nil
	}
	delete(c.locks, key)
	return true, nil
}

func (c *fakeCache) lockOwner(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.locks[key]
	return v, ok
}

func (c *fakeCache) Available() bool { return c.available }

func (c *fakeCache) entries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

type recordingNotifier struct {
	mu      sync.Mutex
	created []match.Result
	changed []match.Status
}

func (n *recordingNotifier) MatchCreated(m match.Result) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, m)
}

func (n *recordingNotifier) MatchStatusChanged(m match.Result, from match.Status) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, m.Status)
}

func mustCreateJob(t *testing.T, s docstore.Store, p job.Posting) job.Posting {
	t.Helper()
	p.Normalize()
	p.Status = job.StatusActive
	data, err := docstore.ToMap(p)
	require.NoError(t, err)
	id, err := s.Create(context.Background(), "jobs", data)
	require.NoError(t, err)
	p.ID = id
	return p
}

func mustCreateProfile(t *testing.T, s docstore.Store, p seeker.Profile) seeker.Profile {
	t.Helper()
	p.Normalize()
	data, err := docstore.ToMap(p)
	require.NoError(t, err)
	id, err := s.Create(context.Background(), "job_seekers", data)
	require.NoError(t, err)
	p.ID = id
	return p
}
