package rename

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/llehouerou/tagger/internal/format"
	"github.com/llehouerou/tagger/internal/record"
	"github.com/llehouerou/tagger/internal/sanitize"
	"github.com/llehouerou/tagger/internal/tags"
)

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []segment
	}{
		{
			name:     "simple placeholder",
			template: "{artist}",
			want:     []segment{{isPlaceholder: true, value: "artist"}},
		},
		{
			name:     "literal only",
			template: "Music",
			want:     []segment{{isPlaceholder: false, value: "Music"}},
		},
		{
			name:     "mixed",
			template: "{artist} - {album}",
			want: []segment{
				{isPlaceholder: true, value: "artist"},
				{isPlaceholder: false, value: " - "},
				{isPlaceholder: true, value: "album"},
			},
		},
		{
			name:     "folder template",
			template: "{albumartist}/{year} • {album}",
			want: []segment{
				{isPlaceholder: true, value: "albumartist"},
				{isPlaceholder: false, value: "/"},
				{isPlaceholder: true, value: "year"},
				{isPlaceholder: false, value: " • "},
				{isPlaceholder: true, value: "album"},
			},
		},
		{
			name:     "escaped braces",
			template: "{{literal}}",
			want:     []segment{{isPlaceholder: false, value: "{literal}"}},
		},
		{
			name:     "unterminated",
			template: "a {title",
			want: []segment{
				{isPlaceholder: false, value: "a "},
				{isPlaceholder: true, value: "title"},
			},
		},
		{
			name:     "empty template",
			template: "",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTemplate(tt.template)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseTemplate(%q) = %v, want %v", tt.template, got, tt.want)
			}
		})
	}
}

func TestResolvePlaceholder(t *testing.T) {
	fs := &tags.FieldSet{
		Artist:       "Pink Floyd",
		Album:        "The Dark Side of the Moon",
		Title:        "Time",
		Track:        "4/10",
		Disc:         "1/2",
		Year:         "1973-03-01",
		OriginalYear: "1972",
		Genre:        "Rock",
	}

	tests := []struct {
		placeholder string
		want        string
	}{
		{"artist", "Pink Floyd"},
		{"albumartist", "Pink Floyd"},
		{"ALBUM", "The Dark Side of the Moon"},
		{"title", "Time"},
		{"year", "1973"},
		{"originalyear", "1972"},
		{"track", "4"},
		{"tracknumber", "04"},
		{"tracktotal", "10"},
		{"disc", "1"},
		{"disctotal", "2"},
		{"genre", "Rock"},
		{"composer", "unknown composer"},
		{"comment", ""},
		{"unknown", "{unknown}"},
	}

	for _, tt := range tests {
		t.Run(tt.placeholder, func(t *testing.T) {
			got := resolvePlaceholder(tt.placeholder, fs)
			if got != tt.want {
				t.Errorf("resolvePlaceholder(%q) = %q, want %q", tt.placeholder, got, tt.want)
			}
		})
	}
}

func TestPadNumber(t *testing.T) {
	tests := map[string]string{
		"":    "",
		"3":   "03",
		"03":  "03",
		"12":  "12",
		"123": "123",
		"A1":  "A1",
	}
	for in, want := range tests {
		if got := padNumber(in); got != want {
			t.Errorf("padNumber(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRemoveEndPeriod(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Mr.", "Mr"},
		{"Album Name.", "Album Name"},
		{"No period", "No period"},
		{"Period. in middle", "Period. in middle"},
		{"Wait...", "Wait"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := removeEndPeriod(tt.input)
			if got != tt.expected {
				t.Errorf("removeEndPeriod(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeSpaces(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Multiple   spaces", "Multiple spaces"},
		{"Tab\there", "Tab here"},
		{"Mix  of\t spaces", "Mix of spaces"},
		{"Single space", "Single space"},
		{"  Leading", "Leading"},
		{"Trailing  ", "Trailing"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := normalizeSpaces(tt.input)
			if got != tt.expected {
				t.Errorf("normalizeSpaces(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExpand(t *testing.T) {
	acdc := &tags.FieldSet{
		Artist: "AC/DC",
		Album:  "Back in Black",
		Track:  "3/12",
		Title:  "What Do You Do for Money Honey?",
	}

	tests := []struct {
		name   string
		mask   string
		fs     *tags.FieldSet
		policy sanitize.Policy
		want   string
	}{
		{
			name:   "ascii underscore",
			mask:   DefaultMask,
			fs:     acdc,
			policy: sanitize.DefaultPolicy(),
			want:   "AC-DC/Back_in_Black/03_-_What_Do_You_Do_for_Money_Honey_",
		},
		{
			name:   "ascii keep",
			mask:   DefaultMask,
			fs:     acdc,
			policy: sanitize.Policy{Illegal: sanitize.ASCII, Spaces: sanitize.Keep},
			want:   "AC-DC/Back in Black/03 - What Do You Do for Money Honey_",
		},
		{
			name:   "unicode keep",
			mask:   DefaultMask,
			fs:     acdc,
			policy: sanitize.Policy{Illegal: sanitize.Unicode, Spaces: sanitize.Keep},
			want:   "AC\u2215DC/Back in Black/03 - What Do You Do for Money Honey\u203d",
		},
		{
			name:   "spaces only",
			mask:   DefaultMask,
			fs:     acdc,
			policy: sanitize.Policy{Illegal: sanitize.SpacesOnly, Spaces: sanitize.Keep},
			want:   "AC-DC/Back in Black/03 - What Do You Do for Money Honey?",
		},
		{
			name:   "empty tag",
			mask:   DefaultMask,
			fs:     &tags.FieldSet{},
			policy: sanitize.Policy{Illegal: sanitize.ASCII, Spaces: sanitize.Keep},
			want:   "unknown artist/unknown album/- unknown title",
		},
		{
			name:   "directory periods and spaces trimmed",
			mask:   "{album} /  {title}",
			fs:     &tags.FieldSet{Album: "Vol. 2.", Title: "Mr."},
			policy: sanitize.Policy{Illegal: sanitize.ASCII, Spaces: sanitize.Keep},
			want:   "Vol. 2/Mr.",
		},
		{
			name:   "leading slash dropped",
			mask:   "/{artist}//{title}",
			fs:     &tags.FieldSet{Artist: "A", Title: "T"},
			policy: sanitize.DefaultPolicy(),
			want:   "A/T",
		},
		{
			name:   "escaped braces and unknown placeholder",
			mask:   "{{{title}}} {bogus}",
			fs:     &tags.FieldSet{Title: "T"},
			policy: sanitize.Policy{Illegal: sanitize.ASCII, Spaces: sanitize.Keep},
			want:   "{T} {bogus}",
		},
		{
			name:   "sentinel in value",
			mask:   "{title}",
			fs:     &tags.FieldSet{Title: "a\uffffb"},
			policy: sanitize.DefaultPolicy(),
			want:   "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Expand(tt.mask, tt.fs, tt.policy)
			want := filepath.FromSlash(tt.want)
			if got != want {
				t.Errorf("Expand(%q) = %q, want %q", tt.mask, got, want)
			}
		})
	}
}

type stubCodec struct {
	tag tags.FieldSet
}

func (c stubCodec) Read(string, tags.Options) (*tags.FileInfo, error) {
	return &tags.FileInfo{Tag: c.tag}, nil
}

func (stubCodec) Write(string, *tags.FieldSet, tags.Options) error { return nil }

func (stubCodec) DisplayInfo(p *tags.Properties) tags.DisplayInfo { return p.Display("stub") }

func (stubCodec) UnsupportedFields() tags.FieldMask { return 0 }

func TestTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "track01.FLAC")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("create file: %v", err)
	}

	reg := format.NewRegistry()
	codec := stubCodec{tag: tags.FieldSet{
		Artist: "AC/DC",
		Album:  "Back in Black",
		Track:  "1/10",
		Title:  "Hells Bells",
	}}
	if err := reg.Register(&format.Descriptor{Extension: ".flac", Codec: codec}); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	f := record.NewFile(path, reg)
	if err := f.Read(); err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	target := Target(f, DefaultMask)
	wantDir := filepath.Join(dir, "AC-DC", "Back in Black")
	if target.Dir != wantDir || target.Leaf != "01 - Hells Bells.FLAC" {
		t.Fatalf("Target() = %+v, want %s/01 - Hells Bells.FLAC", target, wantDir)
	}

	if !f.ApplyChanges(&target, nil) {
		t.Fatal("ApplyChanges() reported no change")
	}
	if err := f.Rename(); err != nil {
		t.Fatalf("Rename() error: %v", err)
	}

	want := filepath.Join(dir, "AC-DC", "Back_in_Black", "01_-_Hells_Bells.flac")
	if f.Path() != want {
		t.Errorf("Path() = %q, want %q", f.Path(), want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
}

func TestTarget_SecondRunKeepsName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "track01.flac")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("create file: %v", err)
	}

	reg := format.NewRegistry()
	codec := stubCodec{tag: tags.FieldSet{Artist: "A", Album: "B", Track: "1", Title: "T"}}
	if err := reg.Register(&format.Descriptor{Extension: ".flac", Codec: codec}); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	f := record.NewFile(path, reg, record.WithRoot(dir))
	if err := f.Read(); err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	want := filepath.Join(dir, "A", "B", "01_-_T.flac")
	for run := 1; run <= 2; run++ {
		target := Target(f, DefaultMask)
		if target.Dir != filepath.Join(dir, "A", "B") {
			t.Fatalf("run %d: Target().Dir = %q, want under root %q", run, target.Dir, dir)
		}
		f.ApplyChanges(&target, nil)
		if run == 2 && !f.Target().Equal(f.SavedName()) {
			t.Fatalf("run 2: Target() = %+v, want saved name %+v", f.Target(), f.SavedName())
		}
		if err := f.Rename(); err != nil {
			t.Fatalf("run %d: Rename() error: %v", run, err)
		}
		if f.Path() != want {
			t.Fatalf("run %d: Path() = %q, want %q", run, f.Path(), want)
		}
	}
	if !f.IsSaved() {
		t.Error("IsSaved() = false after renaming to the same name")
	}
}

func TestTarget_WithoutRootUsesFileDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.flac")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("create file: %v", err)
	}
	reg := format.NewRegistry()
	if err := reg.Register(&format.Descriptor{Extension: ".flac", Codec: stubCodec{tag: tags.FieldSet{Title: "T"}}}); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	f := record.NewFile(path, reg, record.WithRoot(filepath.Join(dir, "elsewhere")))
	if err := f.Read(); err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if got := Target(f, "{title}"); got.Dir != dir {
		t.Errorf("Target().Dir = %q, want %q", got.Dir, dir)
	}
}
