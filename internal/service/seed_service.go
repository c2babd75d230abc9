package service

import (
	"fmt"
	"log"

	"cybertrain/internal/models"
	"cybertrain/internal/repository"
)

// SeedService seeds the default training catalog on first boot
type SeedService struct {
	moduleRepo *repository.ModuleRepository
}

// NewSeedService creates a new seed service
func NewSeedService(moduleRepo *repository.ModuleRepository) *SeedService {
	return &SeedService{moduleRepo: moduleRepo}
}

// SeedDefaultModules inserts the starter training modules when the catalog
// is empty. Safe to call on every boot.
func (s *SeedService) SeedDefaultModules() error {
	count, err := s.moduleRepo.CountModules()
	if err != nil {
		return fmt.Errorf("failed to count modules: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, module := range defaultModules() {
		if _, err := s.moduleRepo.CreateModule(&module); err != nil {
			return fmt.Errorf("failed to seed module %q: %w", module.Title, err)
		}
		log.Printf("Seeded training module: %s", module.Title)
	}
	return nil
}

func defaultModules() []models.Module {
	return []models.Module{
		{
			Title:       "Phishing Awareness",
			Description: "Recognize and report phishing attempts targeting municipal staff.",
			VideoURL:    "https://training-assets.example.com/videos/phishing.mp4",
			Questions: []models.Question{
				{
					Question: "You receive an urgent email from your \"IT department\" asking for your password. What should you do?",
					Options: []string{
						"Reply with your password so IT can fix the issue",
						"Report the email as phishing without clicking anything",
						"Forward it to a coworker to ask what they think",
						"Click the link to check if the site looks legitimate",
					},
					Answer: 1,
				},
				{
					Question: "Which of these is a common sign of a phishing email?",
					Options: []string{
						"A sense of urgency and threats of account suspension",
						"A plain-text signature",
						"It arrives during business hours",
						"It is addressed to you by name",
					},
					Answer: 0,
				},
				{
					Question: "Before clicking a link in an email, you should:",
					Options: []string{
						"Trust it if the sender looks familiar",
						"Hover over it to inspect the real destination",
						"Open it in a private browser window",
						"Click it quickly before it expires",
					},
					Answer: 1,
				},
			},
		},
		{
			Title:       "Password Security",
			Description: "Build and manage strong credentials for municipal systems.",
			VideoURL:    "https://training-assets.example.com/videos/passwords.mp4",
			Questions: []models.Question{
				{
					Question: "Which password is the strongest?",
					Options: []string{
						"Township2024!",
						"correct-horse-battery-staple-9",
						"password123",
						"Your pet's name plus your birth year",
					},
					Answer: 1,
				},
				{
					Question: "How should you store passwords for work systems?",
					Options: []string{
						"A sticky note under the keyboard",
						"A shared spreadsheet with your team",
						"An approved password manager",
						"The same password everywhere so you remember it",
					},
					Answer: 2,
				},
			},
		},
		{
			Title:       "Ransomware Response",
			Description: "What to do in the first minutes of a suspected ransomware infection.",
			VideoURL:    "https://training-assets.example.com/videos/ransomware.mp4",
			Questions: []models.Question{
				{
					Question: "Your screen shows a ransom demand. What is your first step?",
					Options: []string{
						"Pay the ransom to get files back quickly",
						"Disconnect the machine from the network and report it",
						"Restart the computer and hope it clears",
						"Delete the suspicious files yourself",
					},
					Answer: 1,
				},
				{
					Question: "The best defense against data loss from ransomware is:",
					Options: []string{
						"Regular tested backups kept offline",
						"A longer password",
						"Never using email",
						"Keeping files only on your desktop",
					},
					Answer: 0,
				},
			},
		},
	}
}
