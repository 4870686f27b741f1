/*
Package jsonfetch provides a retrying JSON `GET` around the basic `net/http` client in the
standard library.

A single call to Fetch performs one logical read: transport failures (refused connections,
timeouts, dropped bodies) are retried with a linearly increasing delay, while HTTP error statuses
and bodies that aren't well-formed JSON fail straight away, without spending any of the retry
budget.

Every failure is returned as an *Error, whose Kind may be used to branch on the cause without
parsing the message.
*/
package jsonfetch
