// Error codes.
//
// MapError turns internal errors into a message, an action and a code users
// can quote to support. Codes by category:
//
//	Contact file errors (VAL007-VAL010)
//	  VAL007   No column with phone numbers was found
//	  VAL008   A phone number could not be read
//	  VAL009   Default country is not supported
//	  VAL010   The file has no usable contacts
//
//	Campaign service errors (CMP001-CMP004)
//	  CMP003   Campaign service is not configured
//	  CMP004   No campaign user was given
//	  CMP002   Campaign not found
//	  CMP001   Campaign service request failed
//
//	Preview errors (PRV001-PRV002)
//	  PRV001   No saved preview for this campaign
//	  PRV002   No campaign was given
//
//	Store connection errors (DB004-DB007)
//	  DB004    Unable to connect to storage
//	  DB005    Storage connection was interrupted
//	  DB006    Operation timed out
//	  DB007    Storage was busy with conflicting operations
//
//	File errors (FILE001-FILE006)
//	  FILE001  File exceeds the maximum upload size
//	  FILE002  File is not a valid CSV
//	  FILE004  No file was selected
//	  FILE005  The uploaded file is empty
//	  FILE006  The file has no header row
//
//	Upload errors (UPL002-UPL005)
//	  UPL002   System is busy processing other uploads
//	  UPL004   Request was cancelled
//	  UPL005   Request timed out
//
//	Request errors (REQ001)
//	  REQ001   Request body could not be read
//
//	Rate limiting (RATE001)
//	  RATE001  Too many requests
//
//	ERR000   Unknown error: check the logs for the original error
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come first.

package core

import (
	"fmt"
	"strings"
)

// UserMessage is what a user sees for an error.
type UserMessage struct {
	Message string // what happened
	Action  string // what to do about it
	Code    string // support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Contact file errors
	{
		pattern: "no phone column found",
		msg: UserMessage{
			Message: "No column with phone numbers was found",
			Action:  "Name the phone column \"phone\", \"mobile\" or \"phone_number\"",
			Code:    "VAL007",
		},
	},
	{
		pattern: "invalid phone number",
		msg: UserMessage{
			Message: "A phone number could not be read",
			Action:  "Include the country code or set the default country",
			Code:    "VAL008",
		},
	},
	{
		pattern: "unknown country",
		msg: UserMessage{
			Message: "Default country is not supported",
			Action:  "Use an ISO code such as IN or US, or a calling code such as 91",
			Code:    "VAL009",
		},
	},
	{
		pattern: "no valid contacts",
		msg: UserMessage{
			Message: "The file has no usable contacts",
			Action:  "Check that the phone column has numbers in it",
			Code:    "VAL010",
		},
	},

	// Campaign service errors. Matched before connection errors: a failed backend call often wraps one.
	{
		pattern: "campaign backend not configured",
		msg: UserMessage{
			Message: "Campaign service is not configured",
			Action:  "Set CAMPAIGN_API_URL and restart the server",
			Code:    "CMP003",
		},
	},
	{
		pattern: "user_uid is required",
		msg: UserMessage{
			Message: "No campaign user was given",
			Action:  "Pass user_uid with the request",
			Code:    "CMP004",
		},
	},
	{
		pattern: "campaign api: status 404",
		msg: UserMessage{
			Message: "Campaign not found",
			Action:  "Check the campaign ID and the user it belongs to",
			Code:    "CMP002",
		},
	},
	{
		pattern: "campaign api",
		msg: UserMessage{
			Message: "Campaign service request failed",
			Action:  "Please try again in a few moments",
			Code:    "CMP001",
		},
	},

	// Preview errors
	{
		pattern: "preview not found",
		msg: UserMessage{
			Message: "No saved preview for this campaign",
			Action:  "Upload the contact file again",
			Code:    "PRV001",
		},
	},
	{
		pattern: "campaign id is required",
		msg: UserMessage{
			Message: "No campaign was given",
			Action:  "Pass a campaign ID with the request",
			Code:    "PRV002",
		},
	},

	// Store connection errors
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to storage",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Storage connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Storage was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated text",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV file with a header and data rows",
			Code:    "FILE005",
		},
	},
	{
		pattern: "no header row",
		msg: UserMessage{
			Message: "The file has no header row",
			Action:  "Add a first row naming each column",
			Code:    "FILE006",
		},
	},

	// Upload errors
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	// Request errors
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Send a JSON body matching the documented fields",
			Code:    "REQ001",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError returns the user message for the first pattern err matches, or
// the ERR000 fallback. A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError carries the mapped message for display and the original error
// for logs and errors.Is.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string { return e.User.Message }

func (e *UserError) Unwrap() error { return e.Technical }

// NewUserError maps err. It returns nil for a nil err.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
