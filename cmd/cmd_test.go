package cmd

import "testing"

func TestRootCommand_Flags(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"server", "false"},
		{"host", "127.0.0.1"},
		{"port", "8765"},
		{"no-fifo", "false"},
		{"fifo", "/tmp/mygrid.fifo"},
		{"layout", ""},
		{"headless", "false"},
		{"api-budget", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := rootCmd.Flags().Lookup(tt.name)
			if f == nil {
				t.Fatalf("flag --%s not registered", tt.name)
			}
			if f.DefValue != tt.expected {
				t.Errorf("--%s default = %q, want %q", tt.name, f.DefValue, tt.expected)
			}
		})
	}
}

func TestRootCommand_ArgLimit(t *testing.T) {
	if err := rootCmd.Args(rootCmd, []string{"a.json", "b.json"}); err == nil {
		t.Error("more than one positional argument should be rejected")
	}
	if err := rootCmd.Args(rootCmd, []string{"a.json"}); err != nil {
		t.Errorf("one positional argument should be accepted: %v", err)
	}
}
