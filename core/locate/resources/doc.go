/*
Package resources locates the external resources a document refers to:
font files and images.

Font files are searched in caller-supplied directories, in the platform's
user and system font directories, and, if configured, in the font list of
fontconfig. Font collections (.ttc) are skipped. Images are checked for
existence and their dimensions are read; remote images are never fetched.

As resource loading may be a time-consuming task, some functions in this
package work in an async/await fashion by returning a promise.
Functions named

   Resolve…(…)

will return a resource-specific promise type, which the client will call later
to receive the loaded resource. The call to the promise-function will then block
until loading has completed.

Configuration keys read by this package:

   app-key       name of the application's cache folder
   fontconfig    absolute path of the 'fc-list' binary
   font-dirs     additional font directories, separated by the OS path-list separator

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'mdpdf.resources'.
func tracer() tracing.Trace {
	return tracing.Select("mdpdf.resources")
}
