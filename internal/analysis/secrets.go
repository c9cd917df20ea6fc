package analysis

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
)

// Secret is one likely-leaked credential surfaced in a dump's memory.
type Secret struct {
	Offset      int
	Description string
	Match       string
}

var (
	detectorOnce sync.Once
	detectorInst *detect.Detector
	detectorErr  error
)

func gitleaksDetector() (*detect.Detector, error) {
	detectorOnce.Do(func() {
		v := viper.New()
		v.SetConfigType("toml")
		if err := v.ReadConfig(strings.NewReader(config.DefaultConfig)); err != nil {
			detectorErr = fmt.Errorf("read default gitleaks config: %w", err)
			return
		}
		var vc config.ViperConfig
		if err := v.Unmarshal(&vc); err != nil {
			detectorErr = fmt.Errorf("unmarshal gitleaks config: %w", err)
			return
		}
		cfg, err := vc.Translate()
		if err != nil {
			detectorErr = fmt.Errorf("translate gitleaks config: %w", err)
			return
		}
		detectorInst = detect.NewDetector(cfg)
	})
	return detectorInst, detectorErr
}

// FindSecrets runs the gitleaks detector over every string ExtractStrings
// surfaces, so a post-mortem can flag likely-leaked credentials without the
// caller writing custom regexes (SPEC_FULL.md supplemented feature 5).
func (a *Analyser) FindSecrets(opts ExtractStringsOptions) ([]Secret, error) {
	detector, err := gitleaksDetector()
	if err != nil {
		return nil, err
	}

	var secrets []Secret
	for _, s := range a.ExtractStrings(opts) {
		findings := detector.Detect(detect.Fragment{Raw: s.Value})
		for _, f := range findings {
			secrets = append(secrets, Secret{
				Offset:      s.Offset,
				Description: f.Description,
				Match:       f.Secret,
			})
		}
	}
	return secrets, nil
}
