package migrations

import "gorm.io/gorm"

// Early builds of the frontend submitted the American spelling before the
// enum settled on "energised". Normalize any rows written by those builds.
func init() {
	Register("202501100001_normalize_energy_spelling",
		func(db *gorm.DB) error {
			return db.Exec(
				`UPDATE time_entries SET energy_impact = 'energised' WHERE energy_impact = 'energized'`,
			).Error
		},
		func(db *gorm.DB) error {
			return db.Exec(
				`UPDATE time_entries SET energy_impact = 'energized' WHERE energy_impact = 'energised'`,
			).Error
		},
	)
}
