package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/kam/pkg/constants"
	"github.com/turtacn/kam/pkg/errors"
)

func TestBatchParamsValidate(t *testing.T) {
	cases := []struct {
		name    string
		params  BatchParams
		wantErr bool
	}{
		{"minimum", BatchParams{Count: 1, IntervalSeconds: 5}, false},
		{"maximum", BatchParams{Count: 100, IntervalSeconds: 60}, false},
		{"zero_count", BatchParams{Count: 0, IntervalSeconds: 5}, true},
		{"count_too_large", BatchParams{Count: 101, IntervalSeconds: 5}, true},
		{"interval_too_small", BatchParams{Count: 10, IntervalSeconds: 4}, true},
		{"negative_interval", BatchParams{Count: 10, IntervalSeconds: -1}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.params.Validate()
			if tc.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHistoryRecords(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	t.Run("success_record", func(t *testing.T) {
		rec := NewSuccessRecord(RegisteredAccount{
			Email:     "box7@example.com",
			Password:  "Pa55word!",
			AccountID: "acct-1",
		}, now)

		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, "2025/03/14 09:26:53", rec.Timestamp)
		assert.Equal(t, constants.RecordStatusSuccess, rec.Status)
		assert.Equal(t, "box7@example.com", rec.Email)
		assert.Empty(t, rec.Error)
	})

	t.Run("failure_record_has_no_email", func(t *testing.T) {
		rec := NewFailureRecord(fmt.Errorf("imap timeout"), now)

		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, constants.RecordStatusFailed, rec.Status)
		assert.Empty(t, rec.Email)
		assert.Equal(t, "imap timeout", rec.Error)
	})

	t.Run("record_ids_are_unique", func(t *testing.T) {
		a := NewFailureRecord(nil, now)
		b := NewFailureRecord(nil, now)
		assert.NotEqual(t, a.ID, b.ID)
	})
}

func TestRegistrationSettingsValidate(t *testing.T) {
	valid := RegistrationSettings{
		ImapServer:    "imap.example.com:993",
		EmailDomain:   "@example.com",
		EmailPassword: "s3cretpw!",
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("empty_imap_server", func(t *testing.T) {
		s := valid
		s.ImapServer = ""
		assert.Error(t, s.Validate())
	})

	t.Run("domain_without_at", func(t *testing.T) {
		s := valid
		s.EmailDomain = "example.com"
		err := s.Validate()
		assert.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
		assert.Contains(t, err.Error(), "email_domain")
	})

	t.Run("short_password", func(t *testing.T) {
		s := valid
		s.EmailPassword = "short"
		assert.Error(t, s.Validate())
	})

	t.Run("proxy_enabled_requires_host_and_port", func(t *testing.T) {
		s := valid
		s.Proxy = ProxySettings{Enabled: true}
		assert.Error(t, s.Validate())

		s.Proxy.Host = "127.0.0.1"
		assert.Error(t, s.Validate())

		s.Proxy.Port = 7890
		assert.NoError(t, s.Validate())
	})
}

func TestDeviceAuthInfoPollInterval(t *testing.T) {
	info := &DeviceAuthInfo{Interval: 10}
	assert.Equal(t, 10*time.Second, info.PollInterval())

	info.Interval = 0
	assert.Equal(t, 5*time.Second, info.PollInterval())
}
