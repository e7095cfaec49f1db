package models

// FormState is the add/edit form lifecycle.
//
//	loading -> ready -> submitting -> navigated-away
//	                          \-> ready-with-error -> submitting ...
type FormState string

const (
	FormStateLoading        FormState = "loading"
	FormStateReady          FormState = "ready"
	FormStateSubmitting     FormState = "submitting"
	FormStateNavigatedAway  FormState = "navigated-away"
	FormStateReadyWithError FormState = "ready-with-error"
)
