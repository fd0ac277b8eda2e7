package theme

import (
	"runtime"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"
)

func TestThemeIconSetDefensiveCopy(t *testing.T) {
	icons := IconSet{"movie": "🎬"}
	theme := New(WithIconSet(icons))

	icons["movie"] = "mutated"

	if got, want := theme.Icon("movie"), "🎬"; got != want {
		t.Errorf("WithIconSet(%v) Icon(%q) = %q, want %q", icons, "movie", got, want)
	}

	exposed := theme.IconSet()
	exposed["movie"] = "changed"

	if got, want := theme.Icon("movie"), "🎬"; got != want {
		t.Errorf("IconSet() mutation impacted Icon(%q) = %q, want %q", "movie", got, want)
	}
}

func TestThemeIconLookupOrder(t *testing.T) {
	theme := Theme{
		icons:    IconSet{"primary": "icon"},
		fallback: IconSet{"fallback": "fallback-icon"},
	}

	tests := []struct {
		name string
		key  string
		want string
	}{
		{name: "primary", key: "primary", want: "icon"},
		{name: "fallback", key: "fallback", want: "fallback-icon"},
		{name: "missing", key: "missing", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := theme.Icon(tc.key); got != tc.want {
				t.Errorf("Theme.Icon(%q) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestNewAppliesCustomOptions(t *testing.T) {
	customColors := Colors{
		Primary:    lipgloss.Color("#111111"),
		Secondary:  lipgloss.Color("#222222"),
		Accent:     lipgloss.Color("#333333"),
		Background: lipgloss.Color("#444444"),
		Muted:      lipgloss.Color("#555555"),
		Success:    lipgloss.Color("#666666"),
		Error:      lipgloss.Color("#777777"),
	}
	customSpacing := Spacing{PanelPadding: 4, ColumnGap: 3}

	theme := New(
		WithColors(customColors),
		WithSpacing(customSpacing),
		WithBorders(Borders{Panel: lipgloss.ThickBorder()}),
		WithIconSet(IconSet{"custom": "icon"}),
	)

	if diff := cmp.Diff(customColors, theme.Colors()); diff != "" {
		t.Errorf("New(...) Colors() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(customSpacing, theme.Spacing()); diff != "" {
		t.Errorf("New(...) Spacing() mismatch (-want +got):\n%s", diff)
	}
	if got, want := theme.Icon("custom"), "icon"; got != want {
		t.Errorf("New(...) Icon(%q) = %q, want %q", "custom", got, want)
	}
	if got, want := theme.Icon("movie"), asciiIcons["movie"]; got != want {
		t.Errorf("New(...) Icon(%q) = %q, want ASCII fallback %q", "movie", got, want)
	}
}

func TestNewRestoresNilIconSet(t *testing.T) {
	theme := New(WithIconSet(nil))
	want := defaultIconSet()["tv"]

	if got := theme.Icon("tv"); got != want {
		t.Errorf("New(WithIconSet(nil)) Icon(%q) = %q, want %q", "tv", got, want)
	}
}

func TestDefaultIconSetLimitedTerminal(t *testing.T) {
	t.Setenv("SSH_CLIENT", "1")
	t.Setenv("SSH_TTY", "")
	t.Setenv("SSH_CONNECTION", "")

	if diff := cmp.Diff(asciiIcons, defaultIconSet()); diff != "" {
		t.Errorf("defaultIconSet() in limited terminal mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultIconSetEmojiWhenNotLimited(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("defaultIconSet prefers ASCII on Windows")
	}

	t.Setenv("SSH_CLIENT", "")
	t.Setenv("SSH_TTY", "")
	t.Setenv("SSH_CONNECTION", "")

	if diff := cmp.Diff(emojiIcons, defaultIconSet()); diff != "" {
		t.Errorf("defaultIconSet() without limitations mismatch (-want +got):\n%s", diff)
	}
}

func TestIconSetsCoverSameKeys(t *testing.T) {
	for k := range emojiIcons {
		if _, ok := asciiIcons[k]; !ok {
			t.Errorf("asciiIcons missing %q", k)
		}
	}
	for k := range asciiIcons {
		if _, ok := emojiIcons[k]; !ok {
			t.Errorf("emojiIcons missing %q", k)
		}
	}
}

func TestBadgeStyleVariants(t *testing.T) {
	theme := New()
	colors := theme.Colors()

	tests := []struct {
		name string
		kind BadgeKind
		want lipgloss.Color
	}{
		{name: "info", kind: BadgeInfo, want: colors.Accent},
		{name: "success", kind: BadgeSuccess, want: colors.Success},
		{name: "error", kind: BadgeError, want: colors.Error},
		{name: "muted", kind: BadgeMuted, want: colors.Muted},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			style := theme.BadgeStyle(tc.kind)

			bg, ok := style.GetBackground().(lipgloss.Color)
			if !ok {
				t.Fatalf("BadgeStyle(%v) background = %T, want lipgloss.Color", tc.kind, style.GetBackground())
			}
			if bg != tc.want {
				t.Errorf("BadgeStyle(%v) background = %v, want %v", tc.kind, bg, tc.want)
			}

			fg, ok := style.GetForeground().(lipgloss.Color)
			if !ok {
				t.Fatalf("BadgeStyle(%v) foreground = %T, want lipgloss.Color", tc.kind, style.GetForeground())
			}
			if fg != colors.Background {
				t.Errorf("BadgeStyle(%v) foreground = %v, want %v", tc.kind, fg, colors.Background)
			}
		})
	}
}

func TestSourceBadgeKeepsName(t *testing.T) {
	theme := New()
	for _, src := range []string{"tmdb", "fanart.tv", "thetvdb"} {
		if got := theme.SourceBadge(src); !strings.Contains(got, src) {
			t.Errorf("SourceBadge(%q) = %q, want it to contain the source name", src, got)
		}
	}
}

func TestHeaderStyleProperties(t *testing.T) {
	theme := New()
	colors := theme.Colors()

	style := theme.HeaderStyle()

	if !style.GetBold() {
		t.Errorf("HeaderStyle() bold = %v, want %v", style.GetBold(), true)
	}
	if bg, ok := style.GetBackground().(lipgloss.Color); !ok || bg != colors.Primary {
		t.Errorf("HeaderStyle() background = %v, want %v", style.GetBackground(), colors.Primary)
	}
}
