package services

import (
	"regexp"
	"strconv"
	"strings"
)

// Extraction holds the signals pulled out of a user's free text.
// Empty strings and nil pointers mean the signal was not found.
type Extraction struct {
	Choice         string
	PainLevel      *int
	Recommendation string
	Temperature    *float64
	FeverAdvice    string
	Location       string
	Duration       string
}

type keywordBucket struct {
	value    string
	keywords []string
}

var choiceTable = []keywordBucket{
	{"general health information", []string{"1", "one", "general health"}},
	{"appointment booking", []string{"2", "two", "appointment"}},
	{"emergency assistance", []string{"3", "three", "emergency"}},
	{"medication questions", []string{"4", "four", "medication"}},
	{"something else", []string{"5", "five", "something else"}},
}

var locationTable = []keywordBucket{
	{"head", []string{"head", "headache", "head pain", "skull", "temple"}},
	{"chest", []string{"chest", "chest pain", "heart", "breast"}},
	{"back", []string{"back", "spine", "lower back", "upper back"}},
	{"stomach", []string{"stomach", "abdomen", "belly", "tummy", "gut"}},
	{"leg", []string{"leg", "legs", "thigh", "calf", "foot", "feet"}},
	{"arm", []string{"arm", "arms", "hand", "hands", "shoulder"}},
}

var durationTable = []keywordBucket{
	{"a few minutes", []string{"few minutes", "just started", "recently"}},
	{"a few hours", []string{"few hours", "couple hours", "this morning", "this afternoon"}},
	{"a day", []string{"today", "yesterday", "one day", "24 hours"}},
	{"a few days", []string{"few days", "couple days", "since monday", "since tuesday"}},
	{"a week", []string{"week", "7 days", "since last week"}},
}

var (
	painPattern        = regexp.MustCompile(`(\d{1,2})\s*/\s*10|(\d{1,2})\s*out\s*of\s*10|pain\s*level\s*[:=]?\s*(\d{1,2})`)
	temperaturePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:°?\s*f\b|degrees)`)
	placeholderPattern = regexp.MustCompile(`\{([^{}]*)\}`)
)

// Placeholder defaults used when a signal is absent.
const (
	defaultChoice         = "your health concern"
	defaultPainLevel      = "moderate"
	defaultRecommendation = "consulting with a healthcare professional"
	defaultTemperature    = "normal"
	defaultFeverAdvice    = "monitor and rest"
	defaultLocation       = "the affected area"
	defaultDuration       = "a while"
)

const (
	maxPainLevel            = 10
	highFeverFahrenheit     = 103.0
	moderateFeverFahrenheit = 101.0
)

var fixedPlaceholders = map[string]string{
	"appointment_type":    "medical",
	"doctor_preference":   "your preferred doctor",
	"appointment_timing":  "your preferred time",
	"medication_name":     "your medication",
	"medication_response": "please consult your doctor or pharmacist",
	"cough_type":          "persistent",
	"cough_advice":        "staying hydrated and resting",
	"headache_location":   "your head",
	"severity":            "moderate",
	"headache_advice":     "rest in a quiet, dark room",
	"vomiting_status":     "some discomfort",
	"nausea_advice":       "resting and avoiding solid foods",
	"user_topic":          defaultChoice,
	"general_advice":      defaultRecommendation,
}

// ExtractSignals scans text for a menu choice, pain level, temperature,
// body location and duration.
func ExtractSignals(text string) Extraction {
	lowered := strings.ToLower(text)
	var ex Extraction

	ex.Choice = firstBucket(lowered, choiceTable)
	ex.Location = firstBucket(lowered, locationTable)
	ex.Duration = firstBucket(lowered, durationTable)

	if m := painPattern.FindStringSubmatch(lowered); m != nil {
		for _, group := range m[1:] {
			if group == "" {
				continue
			}
			if level, err := strconv.Atoi(group); err == nil && level <= maxPainLevel {
				ex.PainLevel = &level
				ex.Recommendation = painRecommendation(level)
			}
			break
		}
	}

	if m := temperaturePattern.FindStringSubmatch(lowered); m != nil {
		if temp, err := strconv.ParseFloat(m[1], 64); err == nil {
			ex.Temperature = &temp
			ex.FeverAdvice = feverAdvice(temp)
		}
	}

	return ex
}

func firstBucket(lowered string, table []keywordBucket) string {
	for _, bucket := range table {
		if containsAny(lowered, bucket.keywords) {
			return bucket.value
		}
	}
	return ""
}

func painRecommendation(level int) string {
	switch {
	case level >= 8:
		return "immediate medical attention"
	case level >= 6:
		return "seeing a doctor today"
	case level >= 4:
		return "monitoring and possibly seeing a doctor if it persists"
	default:
		return "rest and over-the-counter pain relief"
	}
}

func feverAdvice(fahrenheit float64) string {
	switch {
	case fahrenheit >= highFeverFahrenheit:
		return "immediate medical attention - this is a high fever"
	case fahrenheit >= moderateFeverFahrenheit:
		return "monitor closely and consider seeing a doctor"
	default:
		return "rest, stay hydrated, and monitor"
	}
}

// Render substitutes every {name} token in template in a single pass.
// Unknown names render as empty text so no token survives.
func Render(template string, ex Extraction) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		return ex.value(strings.TrimSpace(token[1 : len(token)-1]))
	})
}

// RenderTemplate extracts signals from userText and renders template with them.
func RenderTemplate(template, userText string) string {
	return Render(template, ExtractSignals(userText))
}

func (ex Extraction) value(name string) string {
	switch name {
	case "user_choice":
		return orDefault(ex.Choice, defaultChoice)
	case "pain_level":
		if ex.PainLevel != nil {
			return strconv.Itoa(*ex.PainLevel)
		}
		return defaultPainLevel
	case "recommendation":
		return orDefault(ex.Recommendation, defaultRecommendation)
	case "temperature":
		if ex.Temperature != nil {
			return strconv.FormatFloat(*ex.Temperature, 'f', -1, 64)
		}
		return defaultTemperature
	case "fever_advice":
		return orDefault(ex.FeverAdvice, defaultFeverAdvice)
	case "pain_location":
		return orDefault(ex.Location, defaultLocation)
	case "duration":
		return orDefault(ex.Duration, defaultDuration)
	}
	return fixedPlaceholders[name]
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
