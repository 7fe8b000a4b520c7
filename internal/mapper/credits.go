package mapper

import (
	"encoding/json"
	"time"

	"moviedb/internal/models"
)

type rawCredit struct {
	CreditID           *string  `json:"credit_id"`
	ID                 *int64   `json:"id"`
	Name               *string  `json:"name"`
	OriginalName       *string  `json:"original_name"`
	Gender             *int     `json:"gender"`
	Popularity         *float64 `json:"popularity"`
	ProfilePath        *string  `json:"profile_path"`
	KnownForDepartment *string  `json:"known_for_department"`
	Character          *string  `json:"character"`
	Order              *int     `json:"order"`
	Department         *string  `json:"department"`
	Job                *string  `json:"job"`
}

// newCastCredit and newCrewCredit are the only ways a credit row is built,
// so a row can never carry both cast and crew fields.
func newCastCredit(creditID string, personID int64, order *int, character *string) models.MovieCredit {
	return models.MovieCredit{
		CreditID:  creditID,
		PersonID:  personID,
		Kind:      models.CreditKindCast,
		CastOrder: order,
		Character: character,
	}
}

func newCrewCredit(creditID string, personID int64, department, job *string) models.MovieCredit {
	return models.MovieCredit{
		CreditID:   creditID,
		PersonID:   personID,
		Kind:       models.CreditKindCrew,
		Department: department,
		Job:        job,
	}
}

// MapCredits converts a credits payload into person rows and credit rows.
// Malformed entries become individual errors; the rest of the payload
// still maps. Persons may repeat when one person holds several credits.
func MapCredits(raw []byte, now time.Time) ([]models.Person, []models.MovieCredit, []error, error) {
	var src struct {
		Cast []json.RawMessage `json:"cast"`
		Crew []json.RawMessage `json:"crew"`
	}
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, nil, nil, &MappingError{Reason: "credits payload is not valid JSON", Raw: raw}
	}

	var (
		persons []models.Person
		credits []models.MovieCredit
		errs    []error
	)

	mapEntry := func(entry json.RawMessage, kind string) {
		var c rawCredit
		if err := json.Unmarshal(entry, &c); err != nil {
			errs = append(errs, &MappingError{Reason: "credit entry is not valid JSON", Raw: entry})
			return
		}
		if c.CreditID == nil || *c.CreditID == "" {
			errs = append(errs, &MappingError{Field: "credit_id", Reason: "credit entry has no credit_id", Raw: entry})
			return
		}
		if c.ID == nil || *c.ID == 0 {
			errs = append(errs, &MappingError{Field: "id", Reason: "credit entry has no person id", Raw: entry})
			return
		}

		var credit models.MovieCredit
		switch kind {
		case models.CreditKindCast:
			if c.Character == nil && c.Order == nil {
				errs = append(errs, &MappingError{Field: "character", Reason: "cast entry has neither character nor order", Raw: entry})
				return
			}
			credit = newCastCredit(*c.CreditID, *c.ID, c.Order, c.Character)
		case models.CreditKindCrew:
			if c.Department == nil && c.Job == nil {
				errs = append(errs, &MappingError{Field: "department", Reason: "crew entry has neither department nor job", Raw: entry})
				return
			}
			credit = newCrewCredit(*c.CreditID, *c.ID, c.Department, c.Job)
		}

		persons = append(persons, models.Person{
			ID:                 *c.ID,
			Name:               strOrEmpty(c.Name),
			OriginalName:       c.OriginalName,
			Gender:             intOrZero(c.Gender),
			Popularity:         decimalPtr(c.Popularity),
			ProfilePath:        c.ProfilePath,
			KnownForDepartment: c.KnownForDepartment,
			LastSeenAt:         now,
			RawJSON:            []byte(entry),
		})
		credits = append(credits, credit)
	}

	for _, entry := range src.Cast {
		mapEntry(entry, models.CreditKindCast)
	}
	for _, entry := range src.Crew {
		mapEntry(entry, models.CreditKindCrew)
	}
	return persons, credits, errs, nil
}
