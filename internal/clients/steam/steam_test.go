package steam

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wavebreaker/wavebreaker/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger init: %v", err)
	}
	return log
}

func TestAuthenticateTicket(t *testing.T) {
	cases := []struct {
		name        string
		body        string
		status      int
		wantSteamID int64
		wantErr     error
	}{
		{
			name:        "ok",
			body:        `{"response":{"params":{"result":"OK","steamid":"76561198000000001","ownersteamid":"76561198000000001","vacbanned":false,"publisherbanned":false}}}`,
			status:      http.StatusOK,
			wantSteamID: 76561198000000001,
		},
		{
			name:    "invalid_ticket",
			body:    `{"response":{"error":{"errorcode":101,"errordesc":"Invalid ticket"}}}`,
			status:  http.StatusForbidden,
			wantErr: ErrInvalidTicket,
		},
		{
			name:    "vac_banned",
			body:    `{"response":{"params":{"result":"OK","steamid":"76561198000000002","vacbanned":true,"publisherbanned":false}}}`,
			status:  http.StatusOK,
			wantErr: ErrBanned,
		},
		{
			name:    "not_ok_result",
			body:    `{"response":{"params":{"result":"Expired","steamid":"76561198000000003"}}}`,
			status:  http.StatusOK,
			wantErr: ErrInvalidTicket,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/ISteamUserAuth/AuthenticateUserTicket/v1/" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("appid"); got != "12900" {
					t.Errorf("appid=%s, want 12900", got)
				}
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(testLogger(t), "testkey", 12900, WithBaseURL(srv.URL))
			got, err := c.AuthenticateTicket(context.Background(), "deadbeef")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err=%v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.wantSteamID {
				t.Fatalf("steamID=%d, want %d", got, tc.wantSteamID)
			}
		})
	}
}

func TestAuthenticateTicketEmpty(t *testing.T) {
	c := NewClient(testLogger(t), "testkey", 12900)
	if _, err := c.AuthenticateTicket(context.Background(), ""); !errors.Is(err, ErrInvalidTicket) {
		t.Fatalf("err=%v, want ErrInvalidTicket", err)
	}
}

func TestGetPlayerSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ISteamUser/GetPlayerSummaries/v2/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"response":{"players":[{"steamid":"76561198000000001","personaname":"breaker","avatarfull":"https://avatars.example/a.jpg"}]}}`))
	}))
	defer srv.Close()

	c := NewClient(testLogger(t), "testkey", 12900, WithBaseURL(srv.URL))
	sum, err := c.GetPlayerSummary(context.Background(), 76561198000000001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.PersonaName != "breaker" {
		t.Fatalf("personaname=%q", sum.PersonaName)
	}
	if sum.AvatarFull == "" {
		t.Fatal("expected avatar URL")
	}
}
