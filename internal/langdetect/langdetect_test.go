package langdetect

import "testing"

func TestDetect(t *testing.T) {
	d := New()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", "We are looking for a senior backend engineer to join our growing platform team and help us build reliable services.", "en"},
		{"german", "Wir suchen einen erfahrenen Softwareentwickler, der unser Team bei der Entwicklung zuverlässiger Dienste unterstützt.", "de"},
		{"french", "Nous recherchons un ingénieur logiciel expérimenté pour rejoindre notre équipe et développer des services fiables.", "fr"},
		{"spanish", "Buscamos un ingeniero de software con experiencia para unirse a nuestro equipo y desarrollar servicios fiables.", "es"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := d.Detect(tt.text)
			if !ok {
				t.Fatal("expected a confident guess")
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDetect_TooShort(t *testing.T) {
	d := New()
	for _, text := range []string{"", "   ", "Benefits"} {
		if lang, ok := d.Detect(text); ok {
			t.Errorf("expected no guess for %q, got %q", text, lang)
		}
	}
}
