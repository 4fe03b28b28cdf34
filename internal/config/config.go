package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Cumple/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Cumple"
	AppID             = "com.github.tartampluch.go-cumple"
	KeyringService    = "com.github.tartampluch.go-cumple"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	EnvPrefix         = "CUMPLE_"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs and the bitácora CSV.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	// Used for creating secure cache directories.
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion     = "version"
	FlagDebug       = "debug"
	FlagConfig      = "config"
	FlagProcess     = "process"
	FlagDryRun      = "dry-run"
	FlagDescVersion = "Show application version and exit"
	FlagDescDebug   = "Enable debug logging to stdout"
	FlagDescConfig  = "Path to the TOML configuration file"
	FlagDescProcess = "Notification channel to run: email or whatsapp"
	FlagDescDryRun  = "Compute and log without sending or writing the bitácora"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Processes & Source/Sink Modes
// -----------------------------------------------------------------------------

const (
	ProcessEmail    = "email"
	ProcessWhatsApp = "whatsapp"

	SourceModePostgres = "postgres"
	SourceModeCSV      = "csv"
	SourceModeVCard    = "vcard"
	SourceModeVCardWeb = "vcard-web"

	SinkModePostgres = "postgres"
	SinkModeCSV      = "csv"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultConfigFile    = "cumple.toml"
	DefaultPort          = "18080"
	DefaultLanguage      = "es"
	DefaultTimezone      = "Local"
	DefaultSMTPHost      = "smtp.gmail.com"
	DefaultSMTPPort      = 587
	DefaultLeapYear      = 2000 // Leap year fallback for vCard dates like --02-29
	DefaultBitacoraFile  = "bitacora.csv"
	DefaultEmailTemplate = "cumple"
	UIDSalt              = "go-cumple-v1-" // Salt for deterministic feed UID generation
)

// SupportedLanguages defines the list of available message languages (ISO 639-1).
var SupportedLanguages = []string{"en", "es"}

// -----------------------------------------------------------------------------
// Settings Keys (koanf paths)
// -----------------------------------------------------------------------------

const (
	KeySourceMode   = "source.mode"
	KeySourcePath   = "source.path"
	KeySourceURL    = "source.url"
	KeySourceUser   = "source.user"
	KeySourcePass   = "source.password"
	KeyDatabaseURL  = "database.url"
	KeyEmailHost    = "email.smtp_host"
	KeyEmailPort    = "email.smtp_port"
	KeyEmailUser    = "email.user"
	KeyEmailPass    = "email.password"
	KeyEmailFrom    = "email.from"
	KeyWhatsAppURL  = "whatsapp.url"
	KeyWhatsAppUser = "whatsapp.user"
	KeyWhatsAppPass = "whatsapp.password"
	KeyBitacoraMode = "bitacora.mode"
	KeyBitacoraPath = "bitacora.path"
	KeyFeedEnabled  = "feed.enabled"
	KeyFeedPort     = "feed.port"
	KeyFeedReminder = "feed.reminder_trigger"
	KeyAppLanguage  = "app.language"
	KeyAppTimezone  = "app.timezone"
	KeyAppSchedule  = "app.schedule"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyMsgToday    = "msg_birthday_today"    // Requires Name
	TKeyMsgTomorrow = "msg_birthday_tomorrow" // Requires Name
	TKeyMsgWeek     = "msg_birthday_week"     // Requires Name, Days
	TKeyMsgMonth    = "msg_birthday_month"    // Requires Name, Days
	TKeyMsgFar      = "msg_birthday_far"      // Requires Name, Days

	TKeyEvtSummaryAge   = "event_summary_age"   // Requires Name, Age
	TKeyEvtSummaryBirth = "event_summary_birth" // Requires Name (for age 0)

	TKeyMailSubject  = "mail_subject_cumple"
	TKeyWhatsAppBody = "tmpl_whatsapp_cumple"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Cumple//Feed//EN"
	ICalCalName   = "Birthdays"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gocumple"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY  = "BDAY"
	VCardFN    = "FN"
	VCardN     = "N"
	VCardEmail = "EMAIL"
	VCardTel   = "TEL"

	DefaultICalRefresh = 24 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// DateFormatDMY is the row format used by spreadsheet exports and the
	// bitácora (day/month/year).
	DateFormatDMY = "02/01/2006"

	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// CSV column layout: nombre, fecha_nacimiento, correo, telefono
	CSVColName     = 0
	CSVColBirth    = 1
	CSVColEmail    = 2
	CSVColPhone    = 3
	CSVColumnCount = 4

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"

	// File Extensions
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
	ExtCSV   = ".csv"
)

// -----------------------------------------------------------------------------
// Database (persona & bitácora)
// -----------------------------------------------------------------------------

const (
	DriverPostgres = "postgres"

	QuerySelectPersonas = "SELECT nombre, fecha_nacimiento, correo, telefono FROM persona"
	QueryInsertBitacora = "INSERT INTO bitacora (run_id, fecha, nombre, dias_para_cumple, notificacion_enviada) VALUES ($1, $2, $3, $4, $5)"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	AddrSeparator       = ":"

	// WhatsApp API surface
	WhatsAppSendPath = "/send/message"
	WhatsAppJID      = "@s.whatsapp.net"
	WhatsAppOK       = "SUCCESS"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrConfigLoad       = "failed to load configuration file"
	ErrConfigEnv        = "failed to load environment overrides"
	ErrSourcePathEmpty  = "configuration error: source path is empty"
	ErrSourceURLEmpty   = "configuration error: source URL is empty"
	ErrDatabaseURLEmpty = "configuration error: database URL is empty"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrSinkUnsupport    = "configuration error: unsupported bitácora mode"
	ErrProcessUnknown   = "unknown process (expected email or whatsapp)"
	ErrEmailConfig      = "configuration error: email user, password and from are required"
	ErrWhatsAppConfig   = "configuration error: whatsapp url, user and password are required"
	ErrTimezoneLoad     = "failed to load timezone"
	ErrScheduleParse    = "failed to parse cron schedule"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrCSVParse         = "failed to parse CSV row"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrDBOpen           = "failed to open database"
	ErrDBQuery          = "failed to query persona table"
	ErrDBScan           = "failed to scan persona row"
	ErrDBInsert         = "failed to insert bitácora row"
	ErrMigrate          = "failed to run migrations"
	ErrTemplateMissing  = "template not found"
	ErrSMTPSend         = "failed to send email"
	ErrWhatsAppSend     = "failed to send whatsapp message"
	ErrWhatsAppStatus   = "whatsapp API returned unexpected status"
	ErrWhatsAppCode     = "whatsapp API reported failure"
	ErrBitacoraOpen     = "failed to open bitácora file"
	ErrBitacoraWrite    = "failed to write bitácora entry"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackSummary      = "Birthday: %s"
	FallbackSummaryAge   = "Birthday: %s (%d)"
	FallbackSummaryBirth = "Birthday: %s (birth)"
	FallbackSubject      = "Happy birthday!"
	FallbackName         = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgLogWarning = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgRunStarted     = "Processing run started"
	MsgRunFinished    = "Processing run finished"
	MsgRowProcessing  = "Processing person"
	MsgRowSkipped     = "Skipping row with invalid birth date"
	MsgRowNoContact   = "No contact address for person"
	MsgBdayToday      = "Birthday found today"
	MsgSendOK         = "Congratulation message sent"
	MsgSendFailed     = "Failed to send congratulation message"
	MsgBitacoraSaved  = "Bitácora entry saved"
	MsgBitacoraFailed = "Failed to save bitácora entry"
	MsgDryRun         = "Dry run: skipping send and bitácora write"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedDate    = "Skipping invalid date format"
	MsgFeedGenerated  = "Calendar feed generated"
	MsgAppStarting    = "Starting application"
	MsgAppStop        = "Application stopped gracefully"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Calendar cache updated"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgKeyringMiss    = "Secret not found in keyring (might be empty)"
	MsgMigrateDone    = "Database migrations applied"
	MsgScheduleMode   = "Running on cron schedule"
	MsgScheduleFire   = "Scheduled run triggered"
	MsgCtxCancel      = "Context cancelled, shutting down"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyProcess   = "process"
	LogKeyRunID     = "run_id"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyDays      = "days_remaining"
	LogKeyAge       = "age"
	LogKeyRecipient = "recipient"
	LogKeyTemplate  = "template"
	LogKeySchedule  = "schedule"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyProcessed = "processed"
	LogKeySent      = "sent"
	LogKeySkipped   = "skipped"
	LogKeyToday     = "birthdays_today"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyDuration  = "duration_ms"
	LogKeyUser      = "user"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine   = "engine"
	CompSource   = "source"
	CompNotify   = "notify"
	CompBitacora = "bitacora"
	CompDatabase = "database"
	CompFeed     = "feed"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompSettings = "settings"
	CompI18n     = "i18n"
	CompMain     = "main"
)
