package validation

import (
	"fmt"
	"net/url"
)

const (
	maxBioLen      = 500
	maxLocationLen = 100
	maxWebsiteLen  = 255
)

// ValidateBio checks profile bio length.
func ValidateBio(bio string) error {
	if len(bio) > maxBioLen {
		return fmt.Errorf("bio must be at most %d characters", maxBioLen)
	}
	return nil
}

// ValidateLocation checks profile location length.
func ValidateLocation(location string) error {
	if len(location) > maxLocationLen {
		return fmt.Errorf("location must be at most %d characters", maxLocationLen)
	}
	return nil
}

// ValidateWebsite checks that the website is an http(s) URL of sane length.
// Empty is allowed.
func ValidateWebsite(website string) error {
	if website == "" {
		return nil
	}
	if len(website) > maxWebsiteLen {
		return fmt.Errorf("website must be at most %d characters", maxWebsiteLen)
	}
	u, err := url.Parse(website)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("website must be a valid http or https URL")
	}
	return nil
}
