package matching

import (
	"math/rand"
	"testing"

	"jobmatch/internal/domain"
	"jobmatch/internal/domain/geo"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/seeker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var origin = geo.Point{Latitude: -6.2, Longitude: 106.8}

func basePosting(skills ...string) job.Posting {
	return job.Posting{
		EmployerID:      "emp-1",
		Title:           "Backend Engineer",
		Skills:          skills,
		EmploymentType:  job.EmploymentFullTime,
		ExperienceLevel: job.ExperienceMid,
		Salary:          job.Salary{Amount: 10000, Type: job.SalaryMonthly, Currency: "USD"},
		Locations:       []job.Location{{Address: "HQ", Coordinates: origin}},
		Status:          job.StatusActive,
	}
}

func baseSeeker(skills ...string) seeker.Profile {
	return seeker.Profile{
		Skills:          skills,
		ExperienceYears: 4,
		CurrentLocation: origin,
		SearchRadiusKm:  10,
		PreferredSalary: seeker.PreferredSalary{Amount: 120000, Type: job.SalaryAnnual},
	}
}

func TestScore_FullSkillMatch(t *testing.T) {
	res, err := Score(basePosting("go", "sql"), baseSeeker("go", "sql", "python"))
	require.NoError(t, err)

	assert.Equal(t, 100.0, res.Criteria.SkillsMatchPct)
	assert.Equal(t, 30.0, res.Breakdown.Skills)
	assert.Equal(t, 100.0, res.Score)
}

func TestScore_PartialSkillMatch(t *testing.T) {
	res, err := Score(basePosting("go", "sql", "rust"), baseSeeker("go"))
	require.NoError(t, err)

	assert.InDelta(t, 33.33, res.Criteria.SkillsMatchPct, 0.01)
	assert.InDelta(t, 10.0, res.Breakdown.Skills, 0.01)
}

func TestScore_SkillsAreCaseInsensitive(t *testing.T) {
	res, err := Score(basePosting("Go", "PostgreSQL"), baseSeeker("go", "postgresql"))
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Criteria.SkillsMatchPct)
}

func TestScore_NoJobSkills(t *testing.T) {
	_, err := Score(basePosting(), baseSeeker("go"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestScore_NoJobLocation(t *testing.T) {
	p := basePosting("go")
	p.Locations = nil
	_, err := Score(p, baseSeeker("go"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestScore_NegativeSalary(t *testing.T) {
	p := basePosting("go")
	p.Salary.Amount = -1
	_, err := Score(p, baseSeeker("go"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestScore_Experience(t *testing.T) {
	s := baseSeeker("go")
	s.ExperienceYears = 2
	res, err := Score(basePosting("go"), s)
	require.NoError(t, err)
	assert.False(t, res.Criteria.ExperienceMatch)
	assert.Equal(t, 0.0, res.Breakdown.Experience)

	s.ExperienceYears = 3
	res, err = Score(basePosting("go"), s)
	require.NoError(t, err)
	assert.True(t, res.Criteria.ExperienceMatch)
	assert.Equal(t, 25.0, res.Breakdown.Experience)
}

func TestScore_NegotiableSeekerAlwaysMatchesSalary(t *testing.T) {
	p := basePosting("go")
	p.Salary = job.Salary{Amount: 1, Type: job.SalaryMonthly}

	s := baseSeeker("go")
	s.PreferredSalary = seeker.PreferredSalary{Amount: 1_000_000, Type: job.SalaryAnnual, IsNegotiable: true}

	res, err := Score(p, s)
	require.NoError(t, err)
	assert.True(t, res.Criteria.SalaryMatch)
	assert.Equal(t, 20.0, res.Breakdown.Salary)
}

func TestScore_SalaryToleranceBand(t *testing.T) {
	s := baseSeeker("go")
	s.PreferredSalary = seeker.PreferredSalary{Amount: 100000, Type: job.SalaryAnnual}

	p := basePosting("go")
	p.Salary = job.Salary{Amount: 7500, Type: job.SalaryMonthly} // 90000 annual
	res, err := Score(p, s)
	require.NoError(t, err)
	assert.True(t, res.Criteria.SalaryMatch)

	p.Salary = job.Salary{Amount: 7400, Type: job.SalaryMonthly} // 88800 annual
	res, err = Score(p, s)
	require.NoError(t, err)
	assert.False(t, res.Criteria.SalaryMatch)
	assert.Equal(t, 0.0, res.Breakdown.Salary)
}

func TestScore_LocationIsBinaryThreshold(t *testing.T) {
	s := baseSeeker("go")
	s.SearchRadiusKm = 10

	var prev float64 = 101
	for _, km := range []float64{0, 5, 9.9, 10.5, 20, 200, 2000} {
		p := basePosting("go")
		p.Locations[0].Coordinates = geo.Point{Latitude: origin.Latitude + km/111.195, Longitude: origin.Longitude}

		res, err := Score(p, s)
		require.NoError(t, err)
		assert.LessOrEqual(t, res.Score, prev)
		prev = res.Score

		if km <= 9.9 {
			assert.True(t, res.Criteria.LocationMatch, "km=%v", km)
			assert.Equal(t, 25.0, res.Breakdown.Location)
		} else {
			assert.False(t, res.Criteria.LocationMatch, "km=%v", km)
			assert.Equal(t, 0.0, res.Breakdown.Location)
			assert.Equal(t, 75.0, res.Score)
		}
	}
}

func TestScore_UsesFirstLocation(t *testing.T) {
	p := basePosting("go")
	far := geo.Point{Latitude: 40, Longitude: -70}
	p.Locations = []job.Location{{Coordinates: far}, {Coordinates: origin}}

	res, err := Score(p, baseSeeker("go"))
	require.NoError(t, err)
	assert.False(t, res.Criteria.LocationMatch)
}

func TestScore_AlwaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pool := []string{"go", "sql", "rust", "python", "java", "docker", "k8s"}
	pick := func() []string {
		n := 1 + rng.Intn(len(pool))
		out := make([]string, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, pool[rng.Intn(len(pool))])
		}
		return out
	}

	for i := 0; i < 1000; i++ {
		p := basePosting(pick()...)
		p.ExperienceLevel = job.ExperienceLevel(rng.Intn(10))
		p.Salary.Amount = rng.Float64() * 20000
		p.Locations[0].Coordinates = geo.Point{Latitude: rng.Float64()*180 - 90, Longitude: rng.Float64()*360 - 180}

		s := baseSeeker(pick()...)
		s.ExperienceYears = rng.Intn(15)
		s.SearchRadiusKm = 1 + rng.Float64()*499
		s.PreferredSalary.IsNegotiable = rng.Intn(2) == 0

		res, err := Score(p, s)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Score, 0.0)
		assert.LessOrEqual(t, res.Score, 100.0)

		again, err := Score(p, s)
		require.NoError(t, err)
		assert.Equal(t, res, again)
	}
}
