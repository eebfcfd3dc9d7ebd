// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"chirp/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rnd *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

var seedTopics = []string{
	"golang", "coffee", "music", "gamedev", "fitness", "travel",
	"cooking", "photography", "startups", "books", "linux", "running",
}

// CreateUser constructs and persists a sample user with its profile.
// All seeded users share the password "password123".
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		Username: strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Password: string(hashed),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	profile := &models.Profile{
		UserID:    user.ID,
		Bio:       gofakeit.Sentence(10),
		Location:  gofakeit.City(),
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	if err := f.db.Create(profile).Error; err != nil {
		return nil, err
	}
	user.Profile = profile
	return user, nil
}

// PostContent generates post text that sometimes carries hashtags and
// mentions of other seeded users.
func (f *Factory) PostContent(users []*models.User) string {
	content := gofakeit.Sentence(f.rnd.Intn(12) + 3)
	if f.rnd.Intn(3) == 0 {
		content += " #" + seedTopics[f.rnd.Intn(len(seedTopics))]
	}
	if f.rnd.Intn(5) == 0 && len(users) > 0 {
		content += " @" + users[f.rnd.Intn(len(users))].Username
	}
	if len(content) > models.MaxPostContentLen {
		content = content[:models.MaxPostContentLen]
	}
	return content
}

// CreateCommunity constructs and persists a sample community.
func (f *Factory) CreateCommunity(owner *models.User) (*models.Community, error) {
	community := &models.Community{
		Name:        gofakeit.HackerNoun() + "-" + fmt.Sprintf("%d", gofakeit.Number(10, 99)),
		Description: gofakeit.Sentence(8),
		OwnerID:     owner.ID,
	}
	if err := f.db.Create(community).Error; err != nil {
		return nil, err
	}
	member := &models.CommunityMember{CommunityID: community.ID, UserID: owner.ID}
	if err := f.db.Create(member).Error; err != nil {
		return nil, err
	}
	return community, nil
}
