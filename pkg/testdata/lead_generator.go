package testdata

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/openhaus/realtycrm/pkg/cadence"
	"github.com/openhaus/realtycrm/pkg/models"
)

// GeneratorConfig configures fake lead generation.
type GeneratorConfig struct {
	Count         int
	EmailChance   float64 // 0.0-1.0 probability of having an email
	PhoneChance   float64
	CompanyChance float64
	AddressChance float64
	// MaxHistoryDays bounds how far back generated notes reach.
	MaxHistoryDays int
	Seed           int64
}

// DefaultGeneratorConfig generates a modest demo pipeline.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Count:          50,
		EmailChance:    0.8,
		PhoneChance:    0.9,
		CompanyChance:  0.4,
		AddressChance:  0.7,
		MaxHistoryDays: 60,
		Seed:           time.Now().UnixNano(),
	}
}

// statusMix weights statuses the way a real pipeline skews: mostly early
// funnel, a few closed.
var statusMix = []struct {
	status cadence.CanonicalStatus
	weight int
}{
	{cadence.StatusVoicemail, 30},
	{cadence.StatusContacted, 35},
	{cadence.StatusInterested, 20},
	{cadence.StatusNotInterested, 10},
	{cadence.StatusClosed, 5},
}

// GeneratedLead is one fake lead plus its note history.
type GeneratedLead struct {
	Lead  models.Lead
	Notes []models.LeadNote
}

// Generate produces fake leads with believable note logs: voicemail
// attempts carry voicemail text, progressed leads carry notes matching
// the workflow steps they have completed.
func Generate(cfg GeneratorConfig) []GeneratedLead {
	faker := gofakeit.New(cfg.Seed)
	rng := rand.New(rand.NewSource(cfg.Seed))
	now := time.Now()

	out := make([]GeneratedLead, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		status := pickStatus(rng)
		lead := models.Lead{
			Name:   faker.Name(),
			Status: string(status),
		}
		if rng.Float64() < cfg.EmailChance {
			lead.Email = faker.Email()
		}
		if rng.Float64() < cfg.PhoneChance {
			lead.Phone = faker.Phone()
		}
		if rng.Float64() < cfg.CompanyChance {
			lead.Company = faker.Company()
		}
		if rng.Float64() < cfg.AddressChance {
			addr := faker.Address()
			lead.Address = fmt.Sprintf("%s, %s", addr.Street, addr.City)
		}

		notes := generateHistory(rng, status, now, cfg.MaxHistoryDays)
		out = append(out, GeneratedLead{Lead: lead, Notes: notes})
	}
	return out
}

func pickStatus(rng *rand.Rand) cadence.CanonicalStatus {
	total := 0
	for _, s := range statusMix {
		total += s.weight
	}
	n := rng.Intn(total)
	for _, s := range statusMix {
		if n < s.weight {
			return s.status
		}
		n -= s.weight
	}
	return cadence.StatusContacted
}

// generateHistory writes notes that tick off a random prefix of the
// status workflow, oldest first, spread over the history window.
func generateHistory(rng *rand.Rand, status cadence.CanonicalStatus, now time.Time, maxDays int) []models.LeadNote {
	steps := cadence.WorkflowFor(status)
	if len(steps) == 0 || rng.Float64() < 0.2 {
		// Some leads are brand new with no outreach yet.
		return nil
	}

	completed := rng.Intn(len(steps)) + 1
	start := now.AddDate(0, 0, -rng.Intn(maxDays)-1)
	gap := now.Sub(start) / time.Duration(completed+1)

	notes := make([]models.LeadNote, 0, completed)
	for i := 0; i < completed; i++ {
		action := steps[i]
		body := action.Label + " done"
		if status == cadence.StatusVoicemail && action.Type == cadence.NoteCall {
			body = action.Label + ": left voicemail"
		}
		notes = append(notes, models.LeadNote{
			ID:        uuid.NewString(),
			Type:      string(action.Type),
			Body:      body,
			CreatedAt: start.Add(gap * time.Duration(i+1)),
		})
	}
	return notes
}
