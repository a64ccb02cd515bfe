package ticket

import (
	"time"

	"github.com/hitoshi/supportdesk/internal/model"
)

// StaffName はサポート担当者のメッセージに表示する名前。
const StaffName = "Support Technique"

func mustTime(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedTickets はデモ用のチケット3件を返す。
func SeedTickets() []model.Ticket {
	return []model.Ticket{
		{
			ID:          "1",
			Subject:     "Problème de connexion WiFi",
			Category:    "network",
			Priority:    model.TicketPriorityHigh,
			Status:      model.TicketStatusOpen,
			Description: "Je n'arrive pas à me connecter au réseau WiFi depuis ce matin. J'ai déjà essayé de redémarrer le routeur mais ça ne fonctionne toujours pas.",
			CreatedAt:   mustTime("2024-03-15T10:30:00"),
			LastUpdate:  mustTime("2024-03-15T14:20:00"),
			Messages: []model.TicketMessage{
				{
					ID:        1,
					UserID:    "user-1",
					UserName:  "Client Test",
					Content:   "Je n'arrive pas à me connecter au réseau WiFi depuis ce matin. J'ai déjà essayé de redémarrer le routeur mais ça ne fonctionne toujours pas.",
					Timestamp: mustTime("2024-03-15T10:30:00"),
				},
				{
					ID:        2,
					UserID:    "staff-1",
					UserName:  StaffName,
					Content:   "Bonjour, pouvez-vous me dire si d'autres appareils peuvent se connecter au réseau WiFi ? Avez-vous vérifié si le problème est spécifique à un seul appareil ?",
					Timestamp: mustTime("2024-03-15T11:15:00"),
					IsStaff:   true,
				},
				{
					ID:        3,
					UserID:    "user-1",
					UserName:  "Client Test",
					Content:   "J'ai vérifié avec mon téléphone et il ne se connecte pas non plus. Je pense que le problème vient du routeur.",
					Timestamp: mustTime("2024-03-15T14:20:00"),
				},
			},
		},
		{
			ID:          "2",
			Subject:     "Écran qui ne s'allume pas",
			Category:    "hardware",
			Priority:    model.TicketPriorityHigh,
			Status:      model.TicketStatusInProgress,
			Description: "L'écran de mon poste de travail reste noir au démarrage alors que l'unité centrale s'allume normalement.",
			CreatedAt:   mustTime("2024-03-14T15:45:00"),
			LastUpdate:  mustTime("2024-03-15T09:15:00"),
			Messages: []model.TicketMessage{
				{
					ID:        1,
					UserID:    "user-1",
					UserName:  "Client Test",
					Content:   "L'écran de mon poste de travail reste noir au démarrage alors que l'unité centrale s'allume normalement.",
					Timestamp: mustTime("2024-03-14T15:45:00"),
				},
				{
					ID:        2,
					UserID:    "staff-1",
					UserName:  StaffName,
					Content:   "Un technicien passera vérifier le câble et l'alimentation de l'écran.",
					Timestamp: mustTime("2024-03-15T09:15:00"),
					IsStaff:   true,
				},
			},
		},
		{
			ID:          "3",
			Subject:     "Installation Windows",
			Category:    "software",
			Priority:    model.TicketPriorityMedium,
			Status:      model.TicketStatusResolved,
			Description: "Besoin d'une installation propre de Windows sur un nouveau portable avec la suite bureautique.",
			CreatedAt:   mustTime("2024-03-13T09:00:00"),
			LastUpdate:  mustTime("2024-03-14T11:30:00"),
			Messages: []model.TicketMessage{
				{
					ID:        1,
					UserID:    "user-1",
					UserName:  "Client Test",
					Content:   "Besoin d'une installation propre de Windows sur un nouveau portable avec la suite bureautique.",
					Timestamp: mustTime("2024-03-13T09:00:00"),
				},
				{
					ID:        2,
					UserID:    "staff-1",
					UserName:  StaffName,
					Content:   "L'installation est terminée, le portable est prêt à être récupéré.",
					Timestamp: mustTime("2024-03-14T11:30:00"),
					IsStaff:   true,
				},
			},
		},
	}
}
