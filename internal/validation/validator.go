package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/content-platform-api/internal/models"
)

var (
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	settingKeyRegex = regexp.MustCompile(`^[a-z0-9]+(?:[_.-][a-z0-9]+)*$`)
)

// Field limits
const (
	MaxTitleLength    = 300
	MaxCategoryLength = 100
	MaxTagLength      = 50
	MaxTags           = 20
	MaxNameLength     = 100
	MinPasswordLength = 6
	MaxSettingKey     = 100
)

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateRegistration validates a self-registration request and returns the
// normalized email
func ValidateRegistration(req *models.RegisterRequest) (string, error) {
	email := NormalizeEmail(req.Email)
	if email == "" {
		return "", models.NewValidationError("email", "email is required")
	}
	if !emailRegex.MatchString(email) {
		return "", models.NewValidationError("email", "invalid email format")
	}
	if err := validateName(req.Name); err != nil {
		return "", err
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		return "", models.NewValidationError("password", "password must be at least %d characters", MinPasswordLength)
	}
	return email, nil
}

// ValidateEmail validates an email supplied by an external identity provider
func ValidateEmail(email string) (string, error) {
	email = NormalizeEmail(email)
	if !emailRegex.MatchString(email) {
		return "", models.NewValidationError("email", "invalid email format")
	}
	return email, nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.NewValidationError("name", "name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return models.NewValidationError("name", "name must be at most %d characters", MaxNameLength)
	}
	return nil
}

// ValidateArticleInput validates a new article and normalizes its tags in place
func ValidateArticleInput(in *models.ArticleInput) error {
	if err := validateTitle(in.Title); err != nil {
		return err
	}
	if err := validateContent(in.Content); err != nil {
		return err
	}
	if err := validateCategory(in.Category); err != nil {
		return err
	}
	tags, err := NormalizeTags(in.Tags)
	if err != nil {
		return err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Tags = tags
	return nil
}

// ValidateArticlePatch validates the present fields of a patch and
// normalizes them in place
func ValidateArticlePatch(p *models.ArticlePatch) error {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
		title := strings.TrimSpace(*p.Title)
		p.Title = &title
	}
	if p.Content != nil {
		if err := validateContent(*p.Content); err != nil {
			return err
		}
	}
	if p.Category != nil {
		if err := validateCategory(*p.Category); err != nil {
			return err
		}
		category := strings.TrimSpace(*p.Category)
		p.Category = &category
	}
	if p.Tags != nil {
		tags, err := NormalizeTags(*p.Tags)
		if err != nil {
			return err
		}
		p.Tags = &tags
	}
	return nil
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.NewValidationError("title", "title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return models.NewValidationError("title", "title must be at most %d characters", MaxTitleLength)
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("content", "content is required")
	}
	return nil
}

func validateCategory(category string) error {
	if utf8.RuneCountInString(strings.TrimSpace(category)) > MaxCategoryLength {
		return models.NewValidationError("category", "category must be at most %d characters", MaxCategoryLength)
	}
	return nil
}

// NormalizeTags trims tags, drops blanks and case-insensitive duplicates,
// and keeps the first occurrence order
func NormalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return nil, models.NewValidationError("tags", "tag %q exceeds %d characters", tag, MaxTagLength)
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	if len(out) > MaxTags {
		return nil, models.NewValidationError("tags", "at most %d tags allowed", MaxTags)
	}
	return out, nil
}

// ValidateCommentContent validates a comment body and returns it trimmed
func ValidateCommentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("content", "content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxCommentLength {
		return "", models.NewValidationError("content", "content must be at most %d characters", models.MaxCommentLength)
	}
	return content, nil
}

// ValidateRole validates a role name
func ValidateRole(role models.Role) error {
	if !role.Valid() {
		return models.NewValidationError("role", "invalid role, must be one of: reader, writer, admin")
	}
	return nil
}

// ValidateSettingKey validates a settings key
func ValidateSettingKey(key string) error {
	if key == "" {
		return models.NewValidationError("key", "key is required")
	}
	if len(key) > MaxSettingKey || !settingKeyRegex.MatchString(key) {
		return models.NewValidationError("key", "key must be lowercase letters, digits and separators")
	}
	return nil
}
