package api

import "github.com/JaimeStill/pashuvision/pkg/openapi"

func str(desc string) *openapi.Schema { return &openapi.Schema{Type: "string", Description: desc} }
func num(desc string) *openapi.Schema { return &openapi.Schema{Type: "number", Description: desc} }
func integer() *openapi.Schema { return &openapi.Schema{Type: "integer"} }
func boolean() *openapi.Schema { return &openapi.Schema{Type: "boolean"} }
func dateTime() *openapi.Schema { return &openapi.Schema{Type: "string", Format: "date-time"} }
func text() *openapi.Schema { return openapi.SchemaRef("TranslatableText") }
func list(s *openapi.Schema) *openapi.Schema {
	return &openapi.Schema{Type: "array", Items: s}
}

func object(props map[string]*openapi.Schema, required ...string) *openapi.Schema {
	return &openapi.Schema{Type: "object", Properties: props, Required: required}
}

func page(item string) *openapi.Schema {
	return object(map[string]*openapi.Schema{
		"data":        openapi.ArrayOf(item),
		"total":       integer(),
		"page":        integer(),
		"page_size":   integer(),
		"total_pages": integer(),
	})
}

func search(extra map[string]*openapi.Schema) *openapi.Schema {
	props := map[string]*openapi.Schema{
		"page":      integer(),
		"page_size": integer(),
		"search":    str("Free-text search"),
		"sort":      str("Comma-separated sort fields, prefix - for descending"),
	}
	for k, v := range extra {
		props[k] = v
	}
	return object(props)
}

// schemas describes the JSON bodies referenced by route operations.
func schemas() map[string]*openapi.Schema {
	owner := object(map[string]*openapi.Schema{
		"name":           str(""),
		"mobile":         str(""),
		"dob":            str("YYYY-MM-DD"),
		"gender":         str("Male, Female, Other, Prefer not to say"),
		"address":        str(""),
		"village":        str(""),
		"district":       str(""),
		"state":          str(""),
		"pincode":        str(""),
		"id_type":        str("Aadhaar, Voter ID, Ration Card, Passport"),
		"id_number":      str(""),
		"caste_category": str("General, OBC, SC, ST"),
		"bank_account":   str(""),
		"ifsc_code":      str(""),
	})

	return map[string]*openapi.Schema{
		"TranslatableText": object(map[string]*openapi.Schema{"en": str("English"), "hi": str("Hindi")}),
		"BreedChoice": object(map[string]*openapi.Schema{
			"breed_name":            str(""),
			"confidence_percentage": num(""),
		}),
		"IdentificationResult": object(map[string]*openapi.Schema{
			"error":                str("Failure message, null on success"),
			"species":              str("Cattle or Buffalo"),
			"breed_name":           str(""),
			"confidence":           num("0-100"),
			"is_user_verified":     boolean(),
			"milk_yield_potential": text(),
			"care_notes":           text(),
			"reasoning":            text(),
			"top_candidates":       openapi.ArrayOf("BreedChoice"),
		}),
		"PhotoFile": object(map[string]*openapi.Schema{
			"id":          str(""),
			"mime_type":   str(""),
			"storage_key": str(""),
			"size_bytes":  integer(),
		}),
		"VaccinationRecord": object(map[string]*openapi.Schema{
			"id":                str(""),
			"vaccine_name":      str(""),
			"administered_date": str("YYYY-MM-DD"),
			"due_date":          str("YYYY-MM-DD"),
			"notes":             str(""),
		}),
		"VaccinationCommand": object(map[string]*openapi.Schema{
			"vaccine_name":      str(""),
			"administered_date": str("YYYY-MM-DD"),
			"due_date":          str("YYYY-MM-DD, after administered_date"),
			"notes":             str(""),
		}, "vaccine_name", "administered_date", "due_date"),
		"AnimalResult": object(map[string]*openapi.Schema{
			"id":             str(""),
			"species":        str("Cattle or Buffalo"),
			"age_value":      str(""),
			"age_unit":       str("Years or Months"),
			"sex":            str("Male or Female"),
			"sex_confidence": str("High, Medium, Low"),
			"photos":         openapi.ArrayOf("PhotoFile"),
			"ai_result":      openapi.SchemaRef("IdentificationResult"),
			"vaccinations":   openapi.ArrayOf("VaccinationRecord"),
		}),
		"Attachment": object(map[string]*openapi.Schema{
			"id":           str(""),
			"kind":         str("owner_id, certificate, other"),
			"filename":     str(""),
			"content_type": str(""),
			"size_bytes":   integer(),
			"page_count":   integer(),
			"storage_key":  str(""),
			"uploaded_at":  dateTime(),
		}),
		"Owner": owner,
		"Registration": object(map[string]*openapi.Schema{
			"id":          str(""),
			"timestamp":   dateTime(),
			"owner":       openapi.SchemaRef("Owner"),
			"animals":     openapi.ArrayOf("AnimalResult"),
			"is_sample":   boolean(),
			"synced":      boolean(),
			"status":      str("Draft or Completed"),
			"attachments": openapi.ArrayOf("Attachment"),
			"updated_at":  dateTime(),
		}),
		"SaveCommand": object(map[string]*openapi.Schema{
			"id":        str("Existing registration id, generated when empty"),
			"timestamp": dateTime(),
			"owner":     openapi.SchemaRef("Owner"),
			"animals":   openapi.ArrayOf("AnimalResult"),
		}),
		"RegistrationPage": page("Registration"),
		"RegistrationSearch": search(map[string]*openapi.Schema{
			"status":    str(""),
			"synced":    boolean(),
			"species":   str(""),
			"breed":     str(""),
			"state":     str(""),
			"district":  str(""),
			"is_sample": boolean(),
		}),
		"RegistryEntry": object(map[string]*openapi.Schema{
			"id":            str(""),
			"owner_name":    str(""),
			"mobile":        str(""),
			"id_number":     str(""),
			"village":       str(""),
			"state":         str(""),
			"district":      str(""),
			"status":        str(""),
			"animal_count":  integer(),
			"breeds":        str("Comma-separated identified breeds"),
			"is_sample":     boolean(),
			"source":        str("Pushing instance"),
			"registered_at": dateTime(),
			"received_at":   dateTime(),
			"registration":  openapi.SchemaRef("Registration"),
		}),
		"PushCommand": object(map[string]*openapi.Schema{
			"source":       str(""),
			"registration": openapi.SchemaRef("Registration"),
		}, "registration"),
		"RegistryPage": page("RegistryEntry"),
		"RegistrySearch": search(map[string]*openapi.Schema{
			"status":    str(""),
			"state":     str(""),
			"district":  str(""),
			"source":    str(""),
			"is_sample": boolean(),
			"since":     dateTime(),
		}),
		"Breed": object(map[string]*openapi.Schema{
			"name":    str(""),
			"species": str(""),
			"origin":  str(""),
			"purpose": str(""),
		}),
		"DetectionResult": object(map[string]*openapi.Schema{
			"error":   str(""),
			"animals": list(object(map[string]*openapi.Schema{
				"species":        str(""),
				"sex":            str(""),
				"sex_confidence": str(""),
			})),
		}),
		"BreedFacts": object(map[string]*openapi.Schema{
			"name":    str(""),
			"species": str(""),
			"error":   str(""),
			"facts":   str(""),
			"sources": list(object(map[string]*openapi.Schema{
				"uri":   str(""),
				"title": str(""),
			})),
		}),
		"SchemesResult": object(map[string]*openapi.Schema{
			"error":   str(""),
			"schemes": list(object(map[string]*openapi.Schema{
				"scheme_name":            str(""),
				"issuing_body":           str(""),
				"description":            str(""),
				"eligibility":            str(""),
				"health_check_required":  boolean(),
				"health_check_frequency": str(""),
			})),
		}),
		"VaccinationResult": object(map[string]*openapi.Schema{
			"error":       str(""),
			"suggestions": list(object(map[string]*openapi.Schema{
				"vaccine_name": str(""),
				"schedule":     str(""),
				"importance":   str(""),
			})),
		}),
		"ChatSession": object(map[string]*openapi.Schema{
			"id":    str(""),
			"kind":  str("breed or general"),
			"breed": str(""),
		}),
		"ChatReply": object(map[string]*openapi.Schema{
			"session_id": str(""),
			"reply":      str(""),
		}),
		"Summary": object(map[string]*openapi.Schema{
			"total_registrations": integer(),
			"total_animals":       integer(),
			"most_common_breed":   str("N/A when no successful identification exists"),
			"unsynced":            integer(),
			"registered_owners":   integer(),
			"drafts":              integer(),
			"activity": object(map[string]*openapi.Schema{
				"today": integer(),
				"week":  integer(),
				"month": integer(),
			}),
			"species": &openapi.Schema{Type: "object", Description: "Animal count per species"},
			"breeds": list(object(map[string]*openapi.Schema{
				"breed": str(""),
				"count": integer(),
			})),
			"identification": object(map[string]*openapi.Schema{
				"success": integer(),
				"failed":  integer(),
			}),
		}),
		"UpcomingVaccination": object(map[string]*openapi.Schema{
			"registration_id": str(""),
			"owner_name":      str(""),
			"animal_id":       str(""),
			"animal_breed":    str(""),
			"vaccine_name":    str(""),
			"due_date":        str("YYYY-MM-DD"),
			"days_until_due":  integer(),
		}),
		"SyncResult": object(map[string]*openapi.Schema{
			"skipped":  str("offline or in_progress"),
			"pending":  integer(),
			"pushed":   integer(),
			"failed":   integer(),
			"started":  dateTime(),
			"duration_ns": integer(),
		}),
		"SyncStatus": object(map[string]*openapi.Schema{
			"remote":   str(""),
			"online":   boolean(),
			"syncing":  boolean(),
			"interval": str(""),
			"unsynced": integer(),
			"last_run": dateTime(),
			"last":     openapi.SchemaRef("SyncResult"),
		}),
	}
}
