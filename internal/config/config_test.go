package config

import "testing"

func TestParseEnvFEMapping(t *testing.T) {
	mapping := parseEnvFEMapping("LOCAL=http://dummy_link,ACC=https://acc.meldingen.amsterdam.nl,PROD=https://meldingen.amsterdam.nl")
	if len(mapping) != 3 {
		t.Fatalf("mapping = %v", mapping)
	}
	if mapping["LOCAL"] != "http://dummy_link" {
		t.Fatalf("LOCAL = %q", mapping["LOCAL"])
	}
	if mapping["PROD"] != "https://meldingen.amsterdam.nl" {
		t.Fatalf("PROD = %q", mapping["PROD"])
	}
}

func TestParseEnvFEMappingSkipsMalformedPairs(t *testing.T) {
	mapping := parseEnvFEMapping("LOCAL=http://dummy_link,broken,=nourl")
	if len(mapping) != 1 {
		t.Fatalf("mapping = %v", mapping)
	}
}

func TestFrontendBaseURL(t *testing.T) {
	frontend := FrontendConfig{
		Environment:  "local",
		EnvFEMapping: map[string]string{"LOCAL": "http://dummy_link"},
	}
	url, ok := frontend.BaseURL()
	if !ok || url != "http://dummy_link" {
		t.Fatalf("BaseURL = %q, %v", url, ok)
	}

	frontend.Environment = "PROD"
	if _, ok := frontend.BaseURL(); ok {
		t.Fatalf("unmapped environment must not resolve")
	}
}
