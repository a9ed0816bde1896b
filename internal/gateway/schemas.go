package gateway

import "google.golang.org/genai"

func translatable(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: description,
		Properties: map[string]*genai.Schema{
			"en": {Type: genai.TypeString, Description: "The content in English."},
			"hi": {Type: genai.TypeString, Description: "The content in Hindi."},
		},
		Required: []string{"en", "hi"},
	}
}

var identificationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"error": {
			Type:        genai.TypeString,
			Description: "Error message if validation fails (e.g., blurry image, not cattle/buffalo). Set to 'null' as a string if successful.",
		},
		"species": {
			Type:        genai.TypeString,
			Description: "The identified species. Must be either 'Cattle' or 'Buffalo'. Set to 'Cattle' as a placeholder if an error occurs.",
			Enum:        []string{SpeciesCattle, SpeciesBuffalo},
		},
		"breed_name": {
			Type:        genai.TypeString,
			Description: "The single most likely breed name. Set to 'Unknown' if an error occurs.",
		},
		"confidence": {
			Type:        genai.TypeInteger,
			Description: "Overall confidence score as a percentage (0-100).",
		},
		"milk_yield_potential": translatable("A brief summary of the breed's milk yield potential, in both English and Hindi."),
		"care_notes":           translatable("A short paragraph on general care and management, in both English and Hindi."),
		"reasoning":            translatable("Brief explanation for the identification based on visual traits, in both English and Hindi."),
		"top_candidates": {
			Type:        genai.TypeArray,
			Description: "ONLY populate this array if the overall confidence is below 75. It should contain the top 3 most likely breed candidates. The confidence percentages among these candidates must sum to 100.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"breed_name": {
						Type:        genai.TypeString,
						Description: "The name of a potential breed from the list.",
					},
					"confidence_percentage": {
						Type:        genai.TypeInteger,
						Description: "The AI's confidence in this specific breed, as a percentage (e.g., 60 for 60%).",
					},
				},
				Required: []string{"breed_name", "confidence_percentage"},
			},
		},
	},
	Required: []string{"error", "species", "breed_name", "confidence", "milk_yield_potential", "care_notes", "reasoning"},
}

var detectionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"error": {
			Type:        genai.TypeString,
			Description: "Error message if detection fails (e.g., unclear image). Set to 'null' as a string if successful.",
		},
		"animals": {
			Type:        genai.TypeArray,
			Description: "An array of all detected cattle or buffalo in the image.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"species": {
						Type: genai.TypeString,
						Enum: []string{SpeciesCattle, SpeciesBuffalo},
					},
					"sex": {
						Type: genai.TypeString,
						Enum: []string{"Male", "Female"},
					},
					"sex_confidence": {
						Type: genai.TypeString,
						Enum: []string{ConfidenceHigh, ConfidenceMedium, ConfidenceLow},
					},
				},
				Required: []string{"species", "sex", "sex_confidence"},
			},
		},
	},
	Required: []string{"error", "animals"},
}

var schemesSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"scheme_name":            {Type: genai.TypeString, Description: "Name of the government scheme or program."},
			"issuing_body":           {Type: genai.TypeString, Description: "The issuing body (e.g., Central Government, State Government of Gujarat)."},
			"description":            {Type: genai.TypeString, Description: "A brief summary of the scheme's benefits and purpose."},
			"eligibility":            {Type: genai.TypeString, Description: "Key eligibility criteria for the animal owner or the animal itself."},
			"health_check_required":  {Type: genai.TypeBoolean, Description: "Whether periodic animal health checks are mandatory for this scheme."},
			"health_check_frequency": {Type: genai.TypeString, Description: "Health check frequency (e.g., 'Annual', 'Bi-annual', 'Quarterly', 'On Application', 'Not Applicable')."},
		},
		Required: []string{"scheme_name", "issuing_body", "description", "eligibility", "health_check_required", "health_check_frequency"},
	},
}

var vaccinationSchema = &genai.Schema{
	Type:        genai.TypeArray,
	Description: "A list of 3-5 of the most critical vaccination recommendations.",
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"vaccine_name": {Type: genai.TypeString, Description: "Common name of the vaccine (e.g., FMD Vaccine)."},
			"schedule":     {Type: genai.TypeString, Description: "A brief, typical vaccination schedule (e.g., 'Annually, before monsoon')."},
			"importance":   {Type: genai.TypeString, Description: "Why this vaccine is important for this animal type in India."},
		},
		Required: []string{"vaccine_name", "schedule", "importance"},
	},
}
