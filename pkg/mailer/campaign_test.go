package mailer

import (
	"testing"
	"time"

	"soundlicense-backend/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", FormatDuration(0))
	assert.Equal(t, "0:05", FormatDuration(5))
	assert.Equal(t, "1:00", FormatDuration(60))
	assert.Equal(t, "3:27", FormatDuration(207))
	assert.Equal(t, "10:02", FormatDuration(602))
	assert.Equal(t, "0:00", FormatDuration(-3))
}

func TestRenderCampaign(t *testing.T) {
	ticketURL := "https://tickets.example.com/show-1"
	profileImage := "profile-images/me.jpg"
	artist := &models.Artist{
		Name:         "Nova Echo",
		Bio:          "Electronic producer",
		Website:      "https://novaecho.example.com",
		SocialLinks:  map[string]string{"instagram": "https://instagram.com/novaecho"},
		ProfileImage: &profileImage,
	}
	tracks := []models.Track{
		{Title: "Midnight Run", Duration: 207, Description: "Late-night driving track"},
	}
	shows := []models.Show{
		{
			Title:     "Club Night",
			Date:      time.Date(2026, 9, 12, 20, 0, 0, 0, time.UTC),
			Venue:     "The Basement",
			City:      "Berlin",
			Country:   "Germany",
			TicketURL: &ticketURL,
		},
	}

	data := BuildCampaignData(artist, "Hey,\ncheck out my new demo!", tracks, shows,
		func(t *models.Track) string { return "https://cdn.example.com/covers/" + t.Title + ".jpg" },
		func(path string) string { return "https://cdn.example.com/" + path },
	)

	html, err := RenderCampaign(data)
	require.NoError(t, err)

	assert.Contains(t, html, "Nova Echo")
	assert.Contains(t, html, "Electronic producer")
	assert.Contains(t, html, "https://cdn.example.com/profile-images/me.jpg")
	assert.Contains(t, html, "Midnight Run")
	assert.Contains(t, html, "3:27")
	assert.Contains(t, html, "Late-night driving track")
	assert.Contains(t, html, "Club Night")
	assert.Contains(t, html, "The Basement")
	assert.Contains(t, html, "Berlin, Germany")
	assert.Contains(t, html, ticketURL)
	assert.Contains(t, html, "https://novaecho.example.com")
	assert.Contains(t, html, "instagram")
	assert.Contains(t, html, "Hey,<br>check out my new demo!", "line breaks become <br>")
}

func TestRenderCampaignEscapesMessage(t *testing.T) {
	artist := &models.Artist{Name: "Nova Echo"}
	data := BuildCampaignData(artist, "<script>alert(1)</script>", nil, nil, nil,
		func(path string) string { return path })

	html, err := RenderCampaign(data)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestChannelQueueDeliversInBackground(t *testing.T) {
	delivered := make(chan Email, 4)
	sender := senderFunc(func(e Email) error {
		delivered <- e
		return nil
	})

	q := NewChannelQueue(sender, 4)
	q.Enqueue(Email{To: "a@example.com", Subject: "s", HTML: "<p>hi</p>"})
	q.Enqueue(Email{To: "b@example.com", Subject: "s", HTML: "<p>hi</p>"})
	q.Close()

	assert.Len(t, delivered, 2)
}

type senderFunc func(Email) error

func (f senderFunc) Send(e Email) error { return f(e) }
