package logger

import "testing"

func TestNew_Levels(t *testing.T) {
	cases := map[string]bool{"debug": true, "info": false, "warn": false, "error": false, "bogus": false}
	for level, debugOn := range cases {
		log, err := New(level)
		if err != nil {
			t.Fatalf("%s: %v", level, err)
		}
		if got := log.Core().Enabled(-1); got != debugOn {
			t.Fatalf("%s: debug enabled = %v", level, got)
		}
	}
}
