/*
Package splitter re-segments concatenated database dumps into one record per
family.

Two dump layouts are supported:

Alignment dumps (Rfam.seed, Rfam.full) are concatenated Stockholm files. A
record starts at every "#=GF AC" line. Every record gets a fresh
"# STOCKHOLM 1.0" header, the headers found in the dump itself are dropped.

Covariance model dumps (Rfam.cm) assign fields with INFERNAL, NAME and
ACC/ACCESSION lines. The INFERNAL preamble appears once per model but is
copied into every record together with the pending NAME line. A record is
flushed when the next NAME line is seen, or at the end of the dump. The "//"
terminator is record content and does not flush.

Records are handed to a Sink one at a time, each record is complete before
the next one is started. The splitter does not validate the "//" sentinel
of alignment records; this is done by the reader (see package stockholm).
*/
package splitter
