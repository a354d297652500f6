// Package domain holds the in-process view of the rows the provisioner creates.
package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationSettingsTable = "user_notification_settings"
	GeneralSettingsTable      = "user_general_settings"
)

// ReminderFrequency is how often class reminders are sent.
type ReminderFrequency string

const (
	ReminderDaily  ReminderFrequency = "daily"
	ReminderWeekly ReminderFrequency = "weekly"
	ReminderNever  ReminderFrequency = "never"
)

// VideoQuality is the preferred playback quality.
type VideoQuality string

const (
	VideoQualityAuto   VideoQuality = "auto"
	VideoQualityHigh   VideoQuality = "high"
	VideoQualityMedium VideoQuality = "medium"
	VideoQualityLow    VideoQuality = "low"
)

const (
	MinFontSize   = 12.0
	MaxFontSize   = 24.0
	MinButtonSize = 0.8
	MaxButtonSize = 1.4
)

// NotificationSettings is one row of user_notification_settings. At most one row exists per user.
type NotificationSettings struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id" validate:"required"`

	PushNotificationsEnabled bool `json:"push_notifications_enabled"`

	NewTutorialsNotifications   bool `json:"new_tutorials_notifications"`
	GalleryUpdatesNotifications bool `json:"gallery_updates_notifications"`
	StudioNewsNotifications     bool `json:"studio_news_notifications"`
	ClassRemindersNotifications bool `json:"class_reminders_notifications"`
	EventNotifications          bool `json:"event_notifications"`
	MessageNotifications        bool `json:"message_notifications"`

	QuietHoursEnabled bool   `json:"quiet_hours_enabled"`
	QuietHoursStart   string `json:"quiet_hours_start" validate:"required,datetime=15:04"`
	QuietHoursEnd     string `json:"quiet_hours_end" validate:"required,datetime=15:04"`

	ReminderFrequency ReminderFrequency `json:"reminder_frequency" validate:"oneof=daily weekly never"`

	// Maintained by the database; updated_at is rewritten by trigger on every update.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GeneralSettings is one row of user_general_settings. At most one row exists per user.
type GeneralSettings struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id" validate:"required"`

	FontSize           float64 `json:"font_size" validate:"gte=12,lte=24"`
	AnimationsEnabled  bool    `json:"animations_enabled"`
	NeonEffectsEnabled bool    `json:"neon_effects_enabled"`

	VideoQuality     VideoQuality `json:"video_quality" validate:"oneof=auto high medium low"`
	AutoplayVideos   bool         `json:"autoplay_videos"`
	DataSaverMode    bool         `json:"data_saver_mode"`
	DownloadWifiOnly bool         `json:"download_wifi_only"`

	HighContrastMode    bool    `json:"high_contrast_mode"`
	ReducedMotion       bool    `json:"reduced_motion"`
	ScreenReaderSupport bool    `json:"screen_reader_support"`
	ButtonSize          float64 `json:"button_size" validate:"gte=0.8,lte=1.4"`

	AnalyticsEnabled    bool `json:"analytics_enabled"`
	CrashReportsEnabled bool `json:"crash_reports_enabled"`
	PersonalizedContent bool `json:"personalized_content"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdminRole is what the admin check reads back from auth.users.
type AdminRole struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	AppRole  string    `json:"app_role"`
	UserRole string    `json:"user_role"`
}

// IsAdmin reports whether both metadata columns carry the admin role.
func (r AdminRole) IsAdmin() bool {
	return r.AppRole == "admin" && r.UserRole == "admin"
}
