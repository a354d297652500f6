package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/zaza-provision/internal/admin"
	"github.com/Proton-105/zaza-provision/internal/domain"
	apperrors "github.com/Proton-105/zaza-provision/internal/errors"
)

const testEmail = "hedidjs@gmail.com"

type mockReader struct {
	mock.Mock
}

func (m *mockReader) SelectRows(ctx context.Context, table string, limit int, out any) error {
	args := m.Called(ctx, table, limit)
	if payload := args.String(0); payload != "" {
		if err := json.Unmarshal([]byte(payload), out); err != nil {
			return err
		}
	}
	return args.Error(1)
}

type fakeQuerier struct {
	payload string
	err     error
	query   string
}

func (f *fakeQuerier) QueryJSON(ctx context.Context, query string, out any) error {
	f.query = query
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.payload), out)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const notificationRow = `[{
	"user_id": "5a4d2c1b-1111-4222-8333-944455556666",
	"quiet_hours_start": "22:00",
	"quiet_hours_end": "08:00",
	"reminder_frequency": "weekly"
}]`

func generalRow(fontSize float64) string {
	return fmt.Sprintf(`[{
	"user_id": "5a4d2c1b-1111-4222-8333-944455556666",
	"font_size": %.1f,
	"video_quality": "auto",
	"button_size": 1.0
}]`, fontSize)
}

func readerWithEmptyTables() *mockReader {
	r := &mockReader{}
	r.On("SelectRows", mock.Anything, domain.NotificationSettingsTable, 1).Return("[]", nil).Once()
	r.On("SelectRows", mock.Anything, domain.GeneralSettingsTable, 1).Return("[]", nil).Once()
	return r
}

func TestVerifier_TablesReachableAdminSkipped(t *testing.T) {
	reader := readerWithEmptyTables()

	v := NewVerifier(reader, nil, testEmail, testLogger())
	result, err := v.Verify(context.Background())

	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, []CheckResult{
		{Name: domain.NotificationSettingsTable, Status: StatusOK},
		{Name: domain.GeneralSettingsTable, Status: StatusOK},
		{Name: AdminCheckName, Status: StatusSkipped},
	}, result.Checks)
	assert.Equal(t, admin.CheckSQL(testEmail), result.AdminQuery)

	reader.AssertExpectations(t)
}

func TestVerifier_StopsAtFirstUnreachableTable(t *testing.T) {
	reader := &mockReader{}
	reader.On("SelectRows", mock.Anything, domain.NotificationSettingsTable, 1).
		Return("", errors.New("relation does not exist")).Once()

	v := NewVerifier(reader, nil, testEmail, testLogger())
	result, err := v.Verify(context.Background())

	require.Error(t, err)
	assert.False(t, result.OK())
	require.Len(t, result.Checks, 1)
	assert.Equal(t, StatusFailed, result.Checks[0].Status)
	reader.AssertNotCalled(t, "SelectRows", mock.Anything, domain.GeneralSettingsTable, 1)
}

func TestVerifier_DecodesExistingRows(t *testing.T) {
	reader := &mockReader{}
	reader.On("SelectRows", mock.Anything, domain.NotificationSettingsTable, 1).
		Return(notificationRow, nil).Once()
	reader.On("SelectRows", mock.Anything, domain.GeneralSettingsTable, 1).
		Return(generalRow(16.0), nil).Once()

	v := NewVerifier(reader, nil, testEmail, testLogger())
	result, err := v.Verify(context.Background())

	require.NoError(t, err)
	assert.True(t, result.OK())
}

func TestVerifier_RowOutsideBoundsFails(t *testing.T) {
	reader := &mockReader{}
	reader.On("SelectRows", mock.Anything, domain.NotificationSettingsTable, 1).
		Return(notificationRow, nil).Once()
	reader.On("SelectRows", mock.Anything, domain.GeneralSettingsTable, 1).
		Return(generalRow(30.0), nil).Once()

	v := NewVerifier(reader, nil, testEmail, testLogger())
	result, err := v.Verify(context.Background())

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
	assert.False(t, result.OK())
	require.Len(t, result.Checks, 2)
	assert.Equal(t, CheckResult{Name: domain.NotificationSettingsTable, Status: StatusOK}, result.Checks[0])
	assert.Equal(t, StatusFailed, result.Checks[1].Status)
	assert.Contains(t, result.Checks[1].Detail, "user_general_settings")
}

func TestVerifier_AdminCheck(t *testing.T) {
	testCases := []struct {
		name   string
		q      *fakeQuerier
		status Status
	}{
		{
			name:   "admin in both columns",
			q:      &fakeQuerier{payload: `[{"id":"5a4d2c1b-1111-4222-8333-944455556666","email":"hedidjs@gmail.com","app_role":"admin","user_role":"admin"}]`},
			status: StatusOK,
		},
		{
			name:   "user missing",
			q:      &fakeQuerier{payload: `[]`},
			status: StatusWarning,
		},
		{
			name:   "role only in one column",
			q:      &fakeQuerier{payload: `[{"email":"hedidjs@gmail.com","app_role":"admin","user_role":null}]`},
			status: StatusWarning,
		},
		{
			name:   "query error",
			q:      &fakeQuerier{err: errors.New("permission denied")},
			status: StatusWarning,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			v := NewVerifier(readerWithEmptyTables(), tc.q, testEmail, testLogger())
			result, err := v.Verify(context.Background())

			require.NoError(t, err)
			assert.True(t, result.OK())
			require.Len(t, result.Checks, 3)
			assert.Equal(t, tc.status, result.Checks[2].Status)
			assert.Equal(t, admin.CheckSQL(testEmail), tc.q.query)
		})
	}
}

func TestTableCheck_Unconfigured(t *testing.T) {
	var c *TableCheck[domain.GeneralSettings]
	assert.Error(t, c.HealthCheck(context.Background()))
}

func TestResult_OKNil(t *testing.T) {
	var r *Result
	assert.False(t, r.OK())
}
