package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"soundlicense-backend/pkg/models"
)

// CampaignTrack is one featured track in a demo campaign email.
type CampaignTrack struct {
	Title       string
	Duration    string
	Description string
	CoverURL    string
}

// CampaignShow is one upcoming show in a demo campaign email.
type CampaignShow struct {
	Title     string
	Date      string
	Venue     string
	Location  string
	TicketURL string
}

// CampaignData is everything the demo campaign template renders.
type CampaignData struct {
	ArtistName      string
	ProfileImageURL string
	Bio             string
	Message         template.HTML
	Tracks          []CampaignTrack
	Shows           []CampaignShow
	Website         string
	SocialLinks     map[string]string
}

var campaignTemplate = template.Must(template.New("campaign").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="margin:0;padding:0;background:#f4f4f5;font-family:Arial,Helvetica,sans-serif;color:#18181b;">
  <div style="max-width:600px;margin:0 auto;padding:24px;background:#ffffff;">
    <div style="text-align:center;padding-bottom:16px;border-bottom:1px solid #e4e4e7;">
      {{if .ProfileImageURL}}<img src="{{.ProfileImageURL}}" alt="{{.ArtistName}}" style="width:96px;height:96px;border-radius:48px;object-fit:cover;">{{end}}
      <h1 style="margin:12px 0 4px;font-size:22px;">{{.ArtistName}}</h1>
      {{if .Bio}}<p style="margin:0;color:#71717a;font-size:14px;">{{.Bio}}</p>{{end}}
    </div>

    <div style="padding:20px 0;font-size:15px;line-height:1.6;">{{.Message}}</div>

    {{if .Tracks}}
    <h2 style="font-size:16px;margin:8px 0;">Featured Tracks</h2>
    {{range .Tracks}}
    <div style="padding:10px 0;border-bottom:1px solid #f4f4f5;">
      {{if .CoverURL}}<img src="{{.CoverURL}}" alt="" style="width:48px;height:48px;border-radius:4px;vertical-align:middle;margin-right:10px;">{{end}}
      <span style="font-weight:bold;">{{.Title}}</span>
      <span style="color:#71717a;font-size:13px;"> &middot; {{.Duration}}</span>
      {{if .Description}}<p style="margin:4px 0 0;color:#71717a;font-size:13px;">{{.Description}}</p>{{end}}
    </div>
    {{end}}
    {{end}}

    {{if .Shows}}
    <h2 style="font-size:16px;margin:16px 0 8px;">Upcoming Shows</h2>
    {{range .Shows}}
    <div style="padding:10px 0;border-bottom:1px solid #f4f4f5;font-size:14px;">
      <div style="font-weight:bold;">{{.Title}}</div>
      <div style="color:#71717a;">{{.Date}} &middot; {{.Venue}}, {{.Location}}</div>
      {{if .TicketURL}}<a href="{{.TicketURL}}" style="color:#6d28d9;">Get tickets</a>{{end}}
    </div>
    {{end}}
    {{end}}

    <div style="padding-top:20px;text-align:center;font-size:13px;color:#71717a;">
      {{if .Website}}<a href="{{.Website}}" style="color:#6d28d9;">{{.Website}}</a><br>{{end}}
      {{range $name, $url := .SocialLinks}}<a href="{{$url}}" style="color:#6d28d9;margin:0 6px;">{{$name}}</a>{{end}}
      <p style="margin-top:16px;">You received this email because an artist shared their demo with you.</p>
    </div>
  </div>
</body>
</html>`))

// FormatDuration renders track seconds as m:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// messageHTML escapes the artist's plain-text message and keeps its line
// breaks.
func messageHTML(message string) template.HTML {
	escaped := template.HTMLEscapeString(message)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return template.HTML(escaped)
}

// BuildCampaignData assembles template data from domain records. urlFor
// maps stored paths to public URLs; coverFor resolves a track's cover.
func BuildCampaignData(artist *models.Artist, message string, tracks []models.Track, shows []models.Show, coverFor func(*models.Track) string, urlFor func(string) string) CampaignData {
	data := CampaignData{
		ArtistName:  artist.Name,
		Bio:         artist.Bio,
		Message:     messageHTML(message),
		Website:     artist.Website,
		SocialLinks: artist.SocialLinks,
	}
	if artist.ProfileImage != nil && *artist.ProfileImage != "" {
		data.ProfileImageURL = urlFor(*artist.ProfileImage)
	}
	for i := range tracks {
		t := &tracks[i]
		ct := CampaignTrack{
			Title:       t.Title,
			Duration:    FormatDuration(t.Duration),
			Description: t.Description,
		}
		if coverFor != nil {
			ct.CoverURL = coverFor(t)
		}
		data.Tracks = append(data.Tracks, ct)
	}
	for _, sh := range shows {
		cs := CampaignShow{
			Title:    sh.Title,
			Date:     sh.Date.Format("Mon, Jan 2 2006"),
			Venue:    sh.Venue,
			Location: locationLine(sh.City, sh.Country),
		}
		if sh.TicketURL != nil {
			cs.TicketURL = *sh.TicketURL
		}
		data.Shows = append(data.Shows, cs)
	}
	return data
}

func locationLine(city, country string) string {
	switch {
	case city != "" && country != "":
		return city + ", " + country
	case city != "":
		return city
	default:
		return country
	}
}

// RenderCampaign renders the demo campaign email body.
func RenderCampaign(data CampaignData) (string, error) {
	var buf bytes.Buffer
	if err := campaignTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render campaign email: %w", err)
	}
	return buf.String(), nil
}
