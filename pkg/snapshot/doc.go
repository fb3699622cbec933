// Package snapshot reads and writes the textual API snapshot format.
//
// A snapshot is a sequence of package blocks, each holding class blocks
// whose bodies are member declarations terminated by semicolons:
//
//	package com.example {
//	  class public abstract Widget<T extends java.lang.Number> extends com.example.Base implements java.io.Closeable {
//	    ctor protected Widget(int);
//	    method public abstract T value() throws java.io.IOException;
//	    field public static final int MAX = 16; // 0x10
//	  }
//	}
//
// Trailing // comments and /* */ comments carry no meaning and are dropped
// by the scanner. Keywords are taken from a Dialect; DefaultDialect covers
// the standard format.
//
// Parse builds an apimodel.Model or fails with a *ParseError carrying the
// line and column of the problem. Unbalanced brackets are reported at the
// opening bracket. Write produces canonical text such that
// Parse(Write(m)) is structurally equal to m.
package snapshot
