package devserver

import (
	"fmt"

	"tableflip.dev/backstage/pkg/entity"
)

// SeedSamples fills every resource with a small, believable data set so the
// dashboard has something to show against a local server.
func (s *Server) SeedSamples() error {
	artist := func(email string) entity.Entity {
		return entity.Entity{"email": email}
	}
	samples := map[string][]entity.Entity{
		"users": {
			{"name": "Nia Okafor", "email": "nia@artists.example", "role": "artist", "isVerified": true, "isBlocked": false},
			{"name": "Leo Park", "email": "leo@artists.example", "role": "artist", "isVerified": false, "isBlocked": false},
			{"name": "Ridgeway Records", "email": "ops@ridgeway.example", "role": "label", "isVerified": true, "isBlocked": false},
			{"name": "Spam Account", "email": "free-streams@spam.example", "role": "artist", "isVerified": false, "isBlocked": true},
		},
		"tickets": {
			{"subject": "Missing royalties for March", "user": artist("nia@artists.example"), "priority": "high", "status": "open"},
			{"subject": "Wrong artwork on release", "user": artist("leo@artists.example"), "priority": "medium", "status": "in-progress"},
			{"subject": "Payout method change", "user": artist("ops@ridgeway.example"), "priority": "low", "status": "resolved"},
		},
		"releases": {
			{"title": "Midnight Drive", "artistName": "Nia Okafor", "labelName": "Ridgeway Records", "status": "LIVE", "releaseDate": "2025-01-17", "distributionStores": []any{"SPOTIFY", "APPLE_MUSIC"}},
			{"title": "Paper Planes", "artistName": "Leo Park", "labelName": "Ridgeway Records", "status": "PENDING", "releaseDate": "2025-03-07"},
			{"title": "Low Tide", "artistName": "Nia Okafor", "status": "REJECTED", "releaseDate": "2024-11-22"},
		},
		"sublabels": {
			{"name": "Ridgeway Lo-Fi", "ownerEmail": "ops@ridgeway.example", "isActive": true},
			{"name": "Ridgeway Archive", "ownerEmail": "ops@ridgeway.example", "isActive": false},
		},
		"payout-requests": {
			{"user": artist("nia@artists.example"), "amount": 420.5, "method": "bank", "status": "pending"},
			{"user": artist("leo@artists.example"), "amount": 75, "method": "paypal", "status": "paid"},
		},
		"merch-stores": {
			{"name": "Midnight Merch", "artistName": "Nia Okafor", "productCount": 12, "isActive": true},
		},
		"wallet-transactions": {
			{"user": artist("nia@artists.example"), "type": "credit", "amount": 1200, "status": "completed"},
			{"user": artist("nia@artists.example"), "type": "debit", "amount": 420.5, "status": "pending"},
		},
		"trending-artists": {
			{"rank": 1, "name": "Nia Okafor", "genre": "Afrobeats", "isActive": true},
			{"rank": 2, "name": "Leo Park", "genre": "Indie", "isActive": true},
		},
		"mv-productions": {
			{"title": "Midnight Drive (Official Video)", "artistName": "Nia Okafor", "budget": 8000, "status": "in_production"},
		},
		"sync-requests": {
			{"trackTitle": "Paper Planes", "platform": "ADS", "status": "pending"},
			{"trackTitle": "Midnight Drive", "platform": "FILM", "status": "approved"},
		},
		"campaigns": {
			{"name": "Midnight Drive launch", "channel": "tiktok", "budget": 1500, "isActive": true},
		},
		"report-data": {
			{"month": "Jan-25", "platform": "SPOTIFY", "streams": 182340, "revenue": 611.2},
			{"month": "Jan-25", "platform": "APPLE_MUSIC", "streams": 40211, "revenue": 301.9},
		},
	}
	months := []entity.Entity{}
	for i, m := range []string{"Oct-24", "Nov-24", "Dec-24", "Jan-25", "Feb-25", "Mar-25"} {
		months = append(months, entity.Entity{
			"month":        m,
			"isActive":     i >= 3,
			"channelCount": 40 + i*3,
			"totalRevenue": 5200 + i*410,
		})
	}
	samples["royalty-months"] = months

	for name, docs := range samples {
		if err := s.Seed(name, docs...); err != nil {
			return fmt.Errorf("devserver: seed %s: %w", name, err)
		}
	}
	return nil
}
