// Package generation defines the boundary between reading sessions and the
// generative AI backend: the StoryGenerator and Illustrator interfaces and the
// typed error taxonomy every backend adapter reports failures with.
//
// Callers switch on an error's Kind rather than inspecting message text;
// KindOf still falls back to textual status markers for errors that did not
// originate in an adapter of this package.
package generation
