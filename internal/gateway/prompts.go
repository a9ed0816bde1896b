package gateway

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/pashuvision/internal/breeds"
)

const identifySystem = `You are an expert AI veterinarian with specialized knowledge in identifying Indian cattle and buffalo breeds from images. Your primary goal is accuracy. Follow all instructions precisely, performing a step-by-step analysis of visual features before making a final determination from the provided list of breeds.`

const identifyTemplate = `Your task is to identify the species and then the breed of the animal in the image(s) with the highest possible accuracy.

Follow these steps meticulously:

**Step 1: Species Identification**
First, determine if the animal in the image is 'Cattle' or 'Buffalo'.
- If it is clearly one of these, remember the species and proceed to Step 2.
- If it is neither (e.g., a goat, dog, or unrecognizable), your task is complete. Immediately provide a JSON response where the 'error' field is "The animal is not cattle or buffalo.", 'species' is 'Cattle' (as a placeholder), 'breed_name' is 'Unknown', 'confidence' is 0, and all translatable text fields are 'N/A'.

**Step 2: Critical Validation**
Perform these validation checks. If any check fails, provide a JSON response with the appropriate 'error' message, set 'species' to the species identified in Step 1 (or 'Cattle' as a placeholder), 'breed_name' to 'Unknown', 'confidence' to 0, and translatable text fields to 'N/A'.
1. **Single Animal Check:** Are all images clearly of the same, single animal? If not, error is "Multiple animals or inconsistent images detected."
2. **Image Quality:** Are the images clear and well-lit? If blurry or obstructed, error is "Poor image quality for reliable identification."

**Step 3: Breed Identification**
If all checks pass, compare the animal against the correct breed list for the identified species.
- For 'Cattle', use this list: [%s]
- For 'Buffalo', use this list: [%s]
- Your main output is the single most likely 'breed_name' and the identified 'species'.

**Step 4: Doubt Resolution & Confidence**
- Determine an overall 'confidence' score (0-100).
- If your overall confidence is below %d, you MUST provide the top 3 most likely breeds in the 'top_candidates' array. The confidence percentages for these top 3 candidates must sum to 100.
- If confidence is %d or higher, the 'top_candidates' array MUST be empty.

**Step 5: Generate JSON Output**
Finally, provide your complete analysis strictly in the specified JSON format.
- If successful, the 'error' field must be the string 'null'.
- The 'species' field must be either 'Cattle' or 'Buffalo'.
- Provide concise 'reasoning', 'milk_yield_potential', and 'care_notes' in both English ('en') and Hindi ('hi').`

const detectPrompt = `Analyze the attached image to identify all instances of cattle and buffalo.
For each animal found, determine its species ('Cattle' or 'Buffalo'), sex ('Male' or 'Female'), and your confidence in the sex determination ('High', 'Medium', or 'Low').

To improve sex accuracy, look for these features:
- **For 'Male'**: Look for the presence of a preputial sheath (pizzle) under the belly, a more pronounced hump (in Zebu cattle), and a generally more muscular build, especially in the neck and shoulders. The absence of a developed udder is a strong indicator.
- **For 'Female'**: Look for the presence of an udder and teats between the hind legs. If the animal is young (a heifer), the udder may be small, but it should still be distinguishable.
- **Confidence**: Base your confidence on the visibility of these key features. If they are clearly visible, confidence is 'High'. If they are somewhat obscured or ambiguous, it is 'Medium'. If they are not visible at all, confidence is 'Low'.

- If the image is unclear, obstructed, or the key sex features are not visible, set the 'error' field.
- If no animals are found in a clear image, return an empty 'animals' array.

Provide your response strictly in the specified JSON format. If no error, the 'error' field must be the string 'null'.`

const factsTemplate = `Provide detailed facts about the %s %s breed, focusing on its context within India. Include information on:
- Origin and native tract
- Physical characteristics (e.g., color, horns, build)
- Temperament and behavior
- Primary use (dairy, draught, dual-purpose)
- Milk yield potential or draught capabilities
- Special attributes or unique traits
- Climatic suitability`

const schemesTemplate = `List relevant and current central and state government schemes, subsidies, insurance programs, and breeding incentives available in India for owners of a %s %s.
For each scheme, provide the following details:
- scheme_name: The official name of the scheme.
- issuing_body: The governing body (e.g., 'Central Government', 'State Government of Gujarat').
- description: A brief summary of the benefits.
- eligibility: Key eligibility criteria for the farmer/owner.
- health_check_required: A boolean indicating if periodic animal health checks are mandatory for this scheme.
- health_check_frequency: If health checks are required, specify the frequency (e.g., 'Annual', 'Bi-annual', 'Quarterly', 'Not Applicable').

Provide your response strictly in the specified JSON format. If no specific schemes are found, return an empty array.`

const vaccinationTemplate = `Based on standard veterinary practices in India, list the 3-5 most critical and commonly recommended vaccinations for a %s %s.
For each vaccination, provide the following details in the specified JSON format:
- vaccine_name: The common name of the vaccine.
- schedule: A brief, typical schedule (e.g., "Annually, pre-monsoon", "Every 6 months").
- importance: A short sentence on why it's crucial (e.g., "Protects against a highly fatal bacterial disease.").

Return your response strictly as a JSON array. If no specific information is available, return an empty array.`

const breedChatTemplate = `You are a helpful veterinary assistant specializing in Indian livestock. Your knowledge is focused on the %s breed. Answer questions clearly and concisely for field workers. Cover topics like care, common diseases, productivity, and nutrition.`

const generalChatSystem = `You are पशुHelper, a friendly and knowledgeable AI assistant for veterinary field workers in India. Your expertise covers two main areas: 1. **Indian Livestock:** You can answer questions about all recognized Indian cattle and buffalo breeds, including their care, productivity, and health. 2. **The PashuVision App:** You are an expert on this application. You can guide users on how to use the app, including how to perform new registrations, view history, understand the dashboard, use the AI for breed identification, and update records. Always provide clear, practical, and concise answers, prioritizing animal welfare and standard veterinary practices when applicable.`

func identifyPrompt() string {
	return fmt.Sprintf(
		identifyTemplate,
		strings.Join(breeds.Names(SpeciesCattle), ", "),
		strings.Join(breeds.Names(SpeciesBuffalo), ", "),
		LowConfidenceThreshold,
		LowConfidenceThreshold,
	)
}

func breedChatSystem(breed string) string {
	return fmt.Sprintf(breedChatTemplate, breed)
}

// Fixed failure values.
const (
	msgIdentifyFailed    = "Failed to communicate with AI service. Please check your connection and API key."
	msgDetectFailed      = "Failed to auto-detect details from image."
	msgFactsUnavailable  = "Could not retrieve detailed information for this breed at the moment. Please try again later."
	msgFactsFailed       = "Failed to communicate with the AI service."
	msgSchemesFailed     = "Could not retrieve scheme information at this time. Please try again later."
	msgVaccinationFailed = "Could not retrieve AI-powered vaccination suggestions at this time."
	msgBreedChatFailed   = "Sorry, I encountered an error. Please try again."
	msgGeneralChatFailed = "Sorry, I'm having trouble connecting right now. Please try again later."
)

var notApplicable = TranslatableText{En: "N/A", Hi: "लागू नहीं"}

// FailedIdentification is the result returned when identification cannot
// reach the model or parse its reply.
func FailedIdentification() IdentificationResult {
	return IdentificationResult{
		Error:              ptr(msgIdentifyFailed),
		Species:            SpeciesCattle,
		BreedName:          "Unknown",
		Confidence:         0,
		MilkYieldPotential: notApplicable,
		CareNotes:          notApplicable,
		Reasoning: TranslatableText{
			En: "An error occurred during AI analysis.",
			Hi: "एआई विश्लेषण के दौरान एक त्रुटि हुई।",
		},
	}
}
