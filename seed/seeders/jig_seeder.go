package seeders

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jigworks/jig_api/model"
	"gorm.io/gorm"
)

// JigSeeder handles seeding demo jigs with published versions
type JigSeeder struct {
	db *gorm.DB
}

// NewJigSeeder creates a new jig seeder
func NewJigSeeder(db *gorm.DB) *JigSeeder {
	return &JigSeeder{db: db}
}

// SeedJigs creates a few published demo jigs owned by the demo author
func (s *JigSeeder) SeedJigs() error {
	var owner model.User
	if err := s.db.Where("username = ?", "demo_author").First(&owner).Error; err != nil {
		log.Printf("Demo author not found, run user seeding first: %v", err)
		return err
	}

	jigs := []struct {
		title    string
		settings json.RawMessage
		modules  json.RawMessage
	}{
		{
			title:    "Fractions Warm-Up",
			settings: json.RawMessage(`{"direction":"ltr","scoring":true,"drag_assist":false}`),
			modules: json.RawMessage(`[
				{"pairing": {"stable_module_id": "m_frac_pairs", "rounds": [{"pairs": 6}]}},
				{"quiz": {"stable_module_id": "m_frac_quiz", "rounds": [{"questions": 8}]}}
			]`),
		},
		{
			title:    "World Capitals Sprint",
			settings: json.RawMessage(`{"direction":"ltr","scoring":true,"drag_assist":true,"time_limit_seconds":180}`),
			modules: json.RawMessage(`[
				{"sorting": {"stable_module_id": "m_capitals_sort", "rounds": [{"items": 10}, {"items": 12}]}}
			]`),
		},
		{
			title:    "Hebrew Letter Match",
			settings: json.RawMessage(`{"direction":"rtl","scoring":false,"drag_assist":true}`),
			modules: json.RawMessage(`[
				{"pairing": {"stable_module_id": "m_alef_bet", "rounds": [{"pairs": 11}, {"pairs": 11}]}}
			]`),
		},
	}

	now := time.Now()
	for _, j := range jigs {
		var existing model.Jig
		err := s.db.Where("owner_id = ? AND title = ?", owner.ID, j.title).First(&existing).Error
		if err == nil {
			log.Printf("Jig %q already exists, skipping", j.title)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		jigID, err := uuid.NewV7()
		if err != nil {
			return err
		}
		versionID, err := uuid.NewV7()
		if err != nil {
			return err
		}

		version := model.JigVersion{
			ID:        versionID.String(),
			JigID:     jigID.String(),
			Modules:   j.modules,
			CreatedAt: now,
		}
		if err := s.db.Create(&version).Error; err != nil {
			log.Printf("Error creating version for jig %q: %v", j.title, err)
			return err
		}

		liveID := versionID.String()
		jig := model.Jig{
			ID:            jigID.String(),
			OwnerID:       owner.ID,
			Title:         j.title,
			LiveVersionID: &liveID,
			Settings:      j.settings,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.db.Create(&jig).Error; err != nil {
			log.Printf("Error creating jig %q: %v", j.title, err)
			return err
		}
		log.Printf("Created jig: %s (%s)", j.title, jig.ID)
	}

	log.Println("Jig seeding completed successfully")
	return nil
}
