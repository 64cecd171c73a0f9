// Package domain contains the core entities of the picture-book service:
// pinyin-annotated pages, quiz items, generated stories and archived books,
// together with the validation and normalization rules applied to model
// output before it reaches a reading session.
package domain
