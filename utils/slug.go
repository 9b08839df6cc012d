package utils

import (
	"fmt"
	"strings"
	"unicode"

	"gorm.io/gorm"
)

// Slugify lowercases a name and collapses everything that is not a
// letter or digit into single hyphens. Accented characters common in
// Spanish names are transliterated first.
func Slugify(name string) string {
	replacer := strings.NewReplacer(
		"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
		"ü", "u", "ñ", "n",
	)
	name = replacer.Replace(strings.ToLower(name))

	var b strings.Builder
	lastHyphen := true // avoid leading hyphen
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// UniqueSlug derives a slug from name and resolves collisions against
// the given model's slug column with a numeric suffix: foo, foo-1, foo-2...
func UniqueSlug(db *gorm.DB, model interface{}, name string) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "item"
	}

	slug := base
	for counter := 1; ; counter++ {
		var count int64
		if err := db.Model(model).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}
