package services

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/Madiyar04/fantasy-league/models"
	"github.com/Madiyar04/fantasy-league/storage"
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FullName собирает отображаемое имя: непустые части имени и фамилии,
// обрезанные по краям, через один пробел. Пустая строка, если обе части
// пустые.
func FullName(firstName, lastName string) string {
	parts := make([]string, 0, 2)
	for _, part := range []string{firstName, lastName} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

// generateInviteToken возвращает криптослучайный URL-безопасный токен.
func generateInviteToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func populateUserAvatarURL(user *models.User, uploader storage.FileUploader) {
	if user == nil {
		return
	}
	user.PasswordHash = ""
	if user.AvatarKey != nil && *user.AvatarKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*user.AvatarKey)
		if url != "" {
			user.AvatarURL = &url
		}
	}
}

func populateTeamLogoURL(team *models.Team, uploader storage.FileUploader) {
	if team != nil && team.LogoKey != nil && *team.LogoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*team.LogoKey)
		if url != "" {
			team.LogoURL = &url
		}
	}
}

func populateDriverPhotoURL(driver *models.Driver, uploader storage.FileUploader) {
	if driver != nil && driver.PhotoKey != nil && *driver.PhotoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*driver.PhotoKey)
		if url != "" {
			driver.PhotoURL = &url
		}
	}
}

func populateConstructorLogoURL(constructor *models.Constructor, uploader storage.FileUploader) {
	if constructor != nil && constructor.LogoKey != nil && *constructor.LogoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*constructor.LogoKey)
		if url != "" {
			constructor.LogoURL = &url
		}
	}
}

// GetExtensionFromContentType сопоставляет MIME-тип картинки расширению файла.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", ErrValidationFailed
	}
}
