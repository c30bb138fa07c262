package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`
	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 6 * * *"`

	// Basis-Pfad innerhalb des Buckets, unter dem alle Artefakte liegen.
	BasePath    string `envconfig:"BASE_PATH" default:"combined/"`
	DBFilename  string `envconfig:"DB_FILENAME" default:"podcast.db"`
	RSSFilename string `envconfig:"RSS_FILENAME" default:"feed.xml"`

	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" required:"true"`
	AudioFileType string `envconfig:"AUDIO_FILE_TYPE" default:".wav"`
	LogoFilename  string `envconfig:"LOGO_FILENAME" default:"artwork/logo.png"`

	// Podcast-Metadaten für den RSS-Feed.
	PodcastTitle       string `envconfig:"PODCAST_TITLE" required:"true"`
	PodcastDescription string `envconfig:"PODCAST_DESCRIPTION" required:"true"`
	PodcastLink        string `envconfig:"PODCAST_LINK" required:"true"`
	PodcastLanguage    string `envconfig:"PODCAST_LANGUAGE" default:"en-us"`
	PodcastAuthor      string `envconfig:"PODCAST_AUTHOR" required:"true"`
	PodcastCopyright   string `envconfig:"PODCAST_COPYRIGHT"`
	PodcastCategory    string `envconfig:"PODCAST_CATEGORY" default:"Science"`

	// Quellen-Konfiguration
	EnabledSources string `envconfig:"ENABLED_SOURCES" default:"arxiv,biorxiv,pubmed"`
	Query          string `envconfig:"QUERY" required:"true"`
	QueryDays      int    `envconfig:"QUERY_DAYS" default:"7"`
	MaxResults     int    `envconfig:"MAX_RESULTS" default:"50"`

	PubMedBaseURL  string `envconfig:"PUBMED_BASE_URL" default:"https://eutils.ncbi.nlm.nih.gov/entrez/eutils"`
	PubMedAPIKey   string `envconfig:"PUBMED_API_KEY"`
	PubMedEmail    string `envconfig:"PUBMED_EMAIL"`
	PubMedTool     string `envconfig:"PUBMED_TOOL" default:"sci-cast"`
	ArxivBaseURL   string `envconfig:"ARXIV_BASE_URL" default:"http://export.arxiv.org/api/query"`
	BiorxivBaseURL string `envconfig:"BIORXIV_BASE_URL" default:"https://api.biorxiv.org/details/biorxiv"`

	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY" required:"true"`
	GPTModel      string `envconfig:"GPT_MODEL" default:"gpt-4o"`
	TTSModel      string `envconfig:"TTS_MODEL" default:"tts-1-hd"`
	TTSTimeoutSec int    `envconfig:"TTS_TIMEOUT_SEC" default:"300"`

	// Moderatoren als "Persona:VoiceID"-Paare, kommasepariert.
	Personas string `envconfig:"PERSONAS" default:"Alex:alloy,Sam:onyx,Nova:nova"`

	BlueskyBaseURL     string `envconfig:"BLUESKY_BASE_URL" default:"https://bsky.social"`
	BlueskyHandle      string `envconfig:"BLUESKY_HANDLE"`
	BlueskyAppPassword string `envconfig:"BLUESKY_APP_PASSWORD"`
	PromoLink          string `envconfig:"PROMO_LINK"`

	S3Key    string `envconfig:"S3_KEY" required:"true"`
	S3Secret string `envconfig:"S3_SECRET" required:"true"`
	S3URL    string `envconfig:"S3_URL" required:"true"`
	S3Region string `envconfig:"S3_REGION" required:"true"`
	S3Bucket string `envconfig:"S3_BUCKET" required:"true"`

	// Verzeichnis mit den Prompt-Vorlagen.
	PromptDir string `envconfig:"PROMPT_DIR" default:"prompts"`
}

// VoiceOption ist eine Moderator-Persona mit zugehöriger TTS-Stimme.
type VoiceOption struct {
	Persona string
	Voice   string
}

// VoiceOptions parst die PERSONAS-Variable in eine Liste von Optionen.
func (c *Config) VoiceOptions() ([]VoiceOption, error) {
	var options []VoiceOption
	for _, pair := range strings.Split(c.Personas, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid persona entry %q, expected \"Persona:VoiceID\"", pair)
		}
		options = append(options, VoiceOption{Persona: parts[0], Voice: parts[1]})
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("PERSONAS must contain at least one \"Persona:VoiceID\" pair")
	}
	return options, nil
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
