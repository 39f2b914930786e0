// Package fonts locates a Hebrew-capable TrueType font pair (regular and
// bold) through an ordered fallback chain: bundled assets, environment
// overrides, known operating-system install locations, and finally a
// bounded network download of an open-license family. Total failure is not
// an error: the resolver reports a degraded asset and the document falls
// back to a Latin-only core font.
package fonts

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"duach/internal/config"
)

// Tier identifies which fallback level produced the resolved fonts.
type Tier int

const (
	TierNone Tier = iota
	TierBundled
	TierEnv
	TierSystem
	TierDownload
)

// String returns the tier name used in logs.
func (t Tier) String() string {
	switch t {
	case TierBundled:
		return "bundled"
	case TierEnv:
		return "env"
	case TierSystem:
		return "system"
	case TierDownload:
		return "download"
	default:
		return "none"
	}
}

// Asset is a resolved font pair. When Degraded is true the paths are empty
// and the caller must use a core Latin font; that state is always logged,
// never silent.
type Asset struct {
	RegularPath string
	BoldPath    string
	Tier        Tier
	Degraded    bool
}

// fontPair is one candidate regular/bold location. An empty bold path means
// the regular weight is duplicated for bold.
type fontPair struct {
	regular string
	bold    string
}

// systemFontTable maps GOOS values to known install locations of
// Hebrew-capable fonts. The current OS's list is preferred; the resolver
// falls back to scanning all lists, which covers containers with foreign
// mount layouts.
var systemFontTable = map[string][]fontPair{
	"linux": {
		{"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf", "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"},
		{"/usr/share/fonts/dejavu/DejaVuSans.ttf", "/usr/share/fonts/dejavu/DejaVuSans-Bold.ttf"},
		{"/usr/share/fonts/truetype/noto/NotoSansHebrew-Regular.ttf", "/usr/share/fonts/truetype/noto/NotoSansHebrew-Bold.ttf"},
		{"/usr/share/fonts/truetype/freefont/FreeSans.ttf", "/usr/share/fonts/truetype/freefont/FreeSansBold.ttf"},
	},
	"windows": {
		{`C:\Windows\Fonts\arial.ttf`, `C:\Windows\Fonts\arialbd.ttf`},
		{`C:\Windows\Fonts\tahoma.ttf`, `C:\Windows\Fonts\tahomabd.ttf`},
	},
	"darwin": {
		{"/Library/Fonts/Arial.ttf", "/Library/Fonts/Arial Bold.ttf"},
		{"/System/Library/Fonts/Supplemental/Arial.ttf", "/System/Library/Fonts/Supplemental/Arial Bold.ttf"},
	},
}

// Resolver resolves the font pair once and caches the result for the
// process. It is an explicit handle passed into document construction, safe
// for concurrent report generations.
type Resolver struct {
	logger  *slog.Logger
	cfg     config.FontsConfig
	limiter *rate.Limiter

	mu     sync.Mutex
	cached *Asset
}

// NewResolver creates a Resolver. Download attempts are rate limited so
// that repeated report requests cannot hammer the font mirror.
func NewResolver(logger *slog.Logger, cfg config.FontsConfig) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		logger:  logger,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(time.Minute), 2),
	}
}

// Resolve returns the font pair for this process, walking the tiers in
// strict priority order on first use. It never returns a path to a
// nonexistent file.
func (r *Resolver) Resolve(ctx context.Context) Asset {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached != nil {
		return *r.cached
	}

	asset := r.resolve(ctx)
	if asset.Degraded {
		r.logger.WarnContext(ctx, "no Hebrew-capable font found, using degraded Latin-only mode")
	} else {
		r.logger.InfoContext(ctx, "resolved fonts",
			slog.String("tier", asset.Tier.String()),
			slog.String("regular", asset.RegularPath),
			slog.String("bold", asset.BoldPath))
	}
	r.cached = &asset
	return asset
}

func (r *Resolver) resolve(ctx context.Context) Asset {
	if asset, ok := r.fromBundled(); ok {
		return asset
	}
	if asset, ok := r.fromEnvOverrides(); ok {
		return asset
	}
	if asset, ok := r.fromSystem(); ok {
		return asset
	}
	if asset, ok := r.fromDownload(ctx); ok {
		return asset
	}
	return Asset{Tier: TierNone, Degraded: true}
}

// fromBundled checks the repository's fixed asset path.
func (r *Resolver) fromBundled() (Asset, bool) {
	pair := fontPair{
		regular: filepath.Join(r.cfg.AssetsDir, "DejaVuSans.ttf"),
		bold:    filepath.Join(r.cfg.AssetsDir, "DejaVuSans-Bold.ttf"),
	}
	return assetFromPair(pair, TierBundled)
}

// fromEnvOverrides checks the configured override paths.
func (r *Resolver) fromEnvOverrides() (Asset, bool) {
	if r.cfg.RegularOverride == "" {
		return Asset{}, false
	}
	return assetFromPair(fontPair{
		regular: r.cfg.RegularOverride,
		bold:    r.cfg.BoldOverride,
	}, TierEnv)
}

// fromSystem scans the known OS font locations, preferring the current OS.
func (r *Resolver) fromSystem() (Asset, bool) {
	if pairs, ok := systemFontTable[runtime.GOOS]; ok {
		for _, pair := range pairs {
			if asset, found := assetFromPair(pair, TierSystem); found {
				return asset, true
			}
		}
	}
	for goos, pairs := range systemFontTable {
		if goos == runtime.GOOS {
			continue
		}
		for _, pair := range pairs {
			if asset, found := assetFromPair(pair, TierSystem); found {
				return asset, true
			}
		}
	}
	return Asset{}, false
}

// assetFromPair validates a candidate pair. A missing bold weight
// duplicates the regular weight rather than failing the tier.
func assetFromPair(pair fontPair, tier Tier) (Asset, bool) {
	if !fileReadable(pair.regular) {
		return Asset{}, false
	}
	bold := pair.bold
	if bold == "" || !fileReadable(bold) {
		bold = pair.regular
	}
	return Asset{RegularPath: pair.regular, BoldPath: bold, Tier: tier}, true
}

// fileReadable reports whether path exists, is a regular file, and opens.
func fileReadable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
