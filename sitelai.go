// Package sitelai translates static site HTML into other languages while
// keeping the markup intact.
//
// Pages opt in to translation with the standard translate attribute,
// exclude parts with translate="no", and supply hand-written translations
// through data-translate-override-<lang> (element content) and
// data-<attr>-<lang> (attribute values). Each translatable span is sent to
// the translation provider as one request, all requests run concurrently,
// and the document is reassembled in its original order.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "time"
//
//	    "github.com/ZaguanLabs/sitelai"
//	    "github.com/ZaguanLabs/sitelai/cache"
//	    "github.com/ZaguanLabs/sitelai/processor"
//	    "github.com/ZaguanLabs/sitelai/provider"
//	)
//
//	func main() {
//	    p := provider.NewGoogleProvider(provider.GoogleConfig{})
//
//	    t := sitelai.NewTranslator("es", p,
//	        sitelai.WithCache(cache.NewInMemoryCache(time.Hour)),
//	        sitelai.WithProcessor(processor.NewHTMLProcessor()),
//	    )
//
//	    result, err := t.ProcessHTML(context.Background(), `<p translate="yes">Hello World</p>`)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if result.Partial() {
//	        log.Println(result.Err())
//	    }
//	    fmt.Println(result.Content) // <p translate="yes">Hola Mundo</p>
//	}
package sitelai
