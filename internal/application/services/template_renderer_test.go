package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/application/services"
)

func TestRenderTemplate(t *testing.T) {
	t.Run("pain and duration", func(t *testing.T) {
		got := services.RenderTemplate(
			"Pain level: {pain_level}. {recommendation}. Duration: {duration}.",
			"I have chest pain 8/10 since yesterday",
		)
		assert.Equal(t, "Pain level: 8. immediate medical attention. Duration: a day.", got)
	})

	t.Run("defaults when nothing is extracted", func(t *testing.T) {
		got := services.RenderTemplate("{pain_location} for {duration}, {temperature}", "not feeling great")
		assert.Equal(t, "the affected area for a while, normal", got)
	})

	t.Run("fixed placeholders", func(t *testing.T) {
		got := services.RenderTemplate("Booking a {appointment_type} visit with {doctor_preference}.", "book me in")
		assert.Equal(t, "Booking a medical visit with your preferred doctor.", got)
	})

	t.Run("unknown placeholders leave no braces", func(t *testing.T) {
		got := services.RenderTemplate("Hello {patient_name}, {  }see you {when}.", "hi")
		assert.Equal(t, "Hello , see you .", got)
		assert.NotContains(t, got, "{")
	})

	t.Run("substituted values are not rescanned", func(t *testing.T) {
		got := services.Render("{pain_location}", services.Extraction{Location: "{duration}"})
		assert.Equal(t, "{duration}", got)
	})
}

func TestExtractSignals(t *testing.T) {
	t.Run("pain level forms", func(t *testing.T) {
		for text, want := range map[string]int{
			"about 3 / 10":     3,
			"6 out of 10 pain": 6,
			"pain level: 9":    9,
		} {
			ex := services.ExtractSignals(text)
			require.NotNil(t, ex.PainLevel, text)
			assert.Equal(t, want, *ex.PainLevel, text)
		}
	})

	t.Run("pain above ten is ignored", func(t *testing.T) {
		ex := services.ExtractSignals("pain level 15")
		assert.Nil(t, ex.PainLevel)
		assert.Empty(t, ex.Recommendation)
	})

	t.Run("pain recommendation bands", func(t *testing.T) {
		assert.Equal(t, "seeing a doctor today", services.ExtractSignals("6/10").Recommendation)
		assert.Equal(t, "monitoring and possibly seeing a doctor if it persists", services.ExtractSignals("4/10").Recommendation)
		assert.Equal(t, "rest and over-the-counter pain relief", services.ExtractSignals("2/10").Recommendation)
	})

	t.Run("temperature bands", func(t *testing.T) {
		high := services.ExtractSignals("fever of 104°F")
		require.NotNil(t, high.Temperature)
		assert.Equal(t, 104.0, *high.Temperature)
		assert.Equal(t, "immediate medical attention - this is a high fever", high.FeverAdvice)

		moderate := services.ExtractSignals("it is 101.5 degrees")
		require.NotNil(t, moderate.Temperature)
		assert.Equal(t, "monitor closely and consider seeing a doctor", moderate.FeverAdvice)

		mild := services.ExtractSignals("99 f this morning")
		require.NotNil(t, mild.Temperature)
		assert.Equal(t, "rest, stay hydrated, and monitor", mild.FeverAdvice)

		celsius := services.ExtractSignals("my fever is 39.5°C")
		assert.Nil(t, celsius.Temperature)
		assert.Empty(t, celsius.FeverAdvice)
		assert.Equal(t, "Temp normal: monitor and rest",
			services.RenderTemplate("Temp {temperature}: {fever_advice}", "my fever is 39.5°C"))
	})

	t.Run("location and duration take the first bucket", func(t *testing.T) {
		ex := services.ExtractSignals("My lower back and my stomach hurt for a few days")
		assert.Equal(t, "back", ex.Location)
		assert.Equal(t, "a few days", ex.Duration)
	})

	t.Run("menu choice", func(t *testing.T) {
		assert.Equal(t, "appointment booking", services.ExtractSignals("two please").Choice)
	})
}
