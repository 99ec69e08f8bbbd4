// Package site translates the pages listed in a Jekyll _config.yml into
// every configured language.
//
// For each language and page the pipeline reads the source page, strips
// its front matter, translates the HTML body, prepends a new front matter
// block and writes the result to <lang>/<src>:
//
//	---
//	title: "Acerca de"
//	layout: "default.es"
//	permalink: "/es/acerca/"
//	lang: "es"
//	lang-ref: "about"
//	en: "about"
//	---
//
// Jobs are independent: one failing page never stops the others.
package site
