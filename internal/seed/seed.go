package seed

import (
	"context"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"equipment-scheduling-backend/internal/model"
)

// fixtureFile mirrors the fleet export format used to bootstrap a fresh
// deployment with equipment master data.
type fixtureFile struct {
	Equipment []equipmentFixture `yaml:"equipment"`
	Projects  []projectFixture   `yaml:"projects"`
	Operators []operatorFixture  `yaml:"operators"`
}

type equipmentFixture struct {
	Name          string `yaml:"name"`
	Model         string `yaml:"model"`
	Brand         string `yaml:"brand"`
	SerialNumber  string `yaml:"serial_number"`
	EquipmentType string `yaml:"equipment_type"`
	Status        string `yaml:"status"`
}

type projectFixture struct {
	Name string `yaml:"name"`
}

type operatorFixture struct {
	Email     string `yaml:"email"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

// EquipmentIfEmpty loads fixtures from path into the equipment, project, and
// operator tables, but only when the equipment table is empty. A missing path
// is not an error; seeding is optional.
func EquipmentIfEmpty(ctx context.Context, db *gorm.DB, path string) error {
	if path == "" {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(&model.Equipment{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count equipment: %w", err)
	}
	if count > 0 {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("equipment fixture file %s not found; skipping seed", path)
			return nil
		}
		return fmt.Errorf("failed to read fixture file %s: %w", path, err)
	}

	var fixtures fixtureFile
	if err := yaml.Unmarshal(raw, &fixtures); err != nil {
		return fmt.Errorf("failed to parse fixture file %s: %w", path, err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, f := range fixtures.Equipment {
			status := f.Status
			if status == "" {
				status = model.EquipmentStatusAvailable
			}
			eq := model.Equipment{
				Name:          f.Name,
				Model:         f.Model,
				Brand:         f.Brand,
				SerialNumber:  f.SerialNumber,
				EquipmentType: f.EquipmentType,
				Status:        status,
				IsActive:      true,
			}
			if err := tx.Create(&eq).Error; err != nil {
				return fmt.Errorf("failed to seed equipment %q: %w", f.Name, err)
			}
		}
		for _, f := range fixtures.Projects {
			if err := tx.Create(&model.Project{Name: f.Name}).Error; err != nil {
				return fmt.Errorf("failed to seed project %q: %w", f.Name, err)
			}
		}
		for _, f := range fixtures.Operators {
			op := model.Operator{Email: f.Email, FirstName: f.FirstName, LastName: f.LastName, IsActive: true}
			if err := tx.Create(&op).Error; err != nil {
				return fmt.Errorf("failed to seed operator %q: %w", f.Email, err)
			}
		}
		log.Printf("seeded %d equipment, %d projects, %d operators from %s",
			len(fixtures.Equipment), len(fixtures.Projects), len(fixtures.Operators), path)
		return nil
	})
}
