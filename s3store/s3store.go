/* Copyright (c) 2013 The s3cache AUTHORS. All rights reserved.
 * Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file in the current directory for license terms
 *
 * Package s3store persists small blobs in Amazon S3 for the bot: match
 * history records under plain object keys, and HTTP cache entries (it
 * implements httpcache.Cache) under hashed keys. Derived from the original
 * github.com/sourcegraph/s3cache but reworked for aws-sdk-go-v2 and the
 * bot's storage needs.
 */
package s3store

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
)

// Store reads and writes objects in one S3 bucket.
type Store struct {
	// Config is the Amazon S3 configuration.
	Config aws.Config

	// Client is the s3 client the store uses. By default this is
	// initialized in Init() with the default Config, but callers can
	// optionally override it with their own client if desired.
	Client *s3.Client

	bucketName string

	// gzip indicates whether cache entries should be gzipped in Set and
	// gunzipped in Get. If true, cache entry keys have the suffix ".gz"
	// appended. Plain-key objects are never compressed.
	gzip bool

	log zerolog.Logger

	// context used for cache-interface calls, which carry no context of
	// their own
	ctx context.Context
}

// New returns a Store backed by the named bucket. Callers should invoke
// Init() on the returned Store before use.
func New(ctx context.Context, bucketName string, gzip bool,
	log zerolog.Logger) *Store {

	return &Store{
		ctx:        ctx,
		bucketName: bucketName,
		gzip:       gzip,
		log:        log,
	}
}

// Init loads AWS configuration from the default sources (environment
// variables, shared config/credentials files) and verifies the bucket is
// reachable with the permissions the store needs.
func (s *Store) Init() error {
	var err error
	s.Config, err = config.LoadDefaultConfig(s.ctx)
	if err != nil {
		return fmt.Errorf("s3store.init: failed to load AWS config: %w", err)
	}
	s.Client = s3.NewFromConfig(s.Config)

	if _, err = s.Client.HeadBucket(s.ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucketName),
	}); err != nil {
		return fmt.Errorf("s3store.init: head bucket failed for %s: %w", s.bucketName, err)
	}
	if _, err = s.Client.ListObjectsV2(s.ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucketName),
		MaxKeys: aws.Int32(1),
	}); err != nil {
		return fmt.Errorf("s3store.init: list objects failed for %s: %w", s.bucketName, err)
	}

	return nil
}

// Put stores data under the given plain object key.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("s3store.put: put failed for %v/%v: %w", s.bucketName, key, err)
	}

	return nil
}

// Fetch retrieves the object stored under the given plain key.
func (s *Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3store.fetch: get failed for %v/%v: %w",
			s.bucketName, key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("s3store.fetch: read failed for %v/%v: %w",
			s.bucketName, key, err)
	}

	return data, nil
}

// List returns the object keys under prefix, sorted descending so that
// date-prefixed keys come back newest first.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(s.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucketName),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3store.list: list failed for %v/%v: %w",
				s.bucketName, prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	return keys, nil
}

//----------------------------------------------
// httpcache.Cache implementation
//----------------------------------------------

// Get implements httpcache.Cache. A missing key is just a cache miss.
func (s *Store) Get(key string) ([]byte, bool) {
	resp, err := s.Client.GetObject(s.ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.cacheKeyToObjectKey(key)),
	})
	if err != nil {
		var apiErr smithy.APIError
		if !(errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey") {
			s.log.Warn().Err(err).Str("key", key).Msg("s3store cache get failed")
		}
		return []byte{}, false
	}
	defer resp.Body.Close()

	rdr := io.ReadCloser(resp.Body)
	if s.gzip {
		rdr, err = gzip.NewReader(rdr)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).
				Msg("s3store cache open compressed failed")
			return nil, false
		}
		defer rdr.Close()
	}

	data, err := io.ReadAll(rdr)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("s3store cache read failed")
	}

	return data, err == nil
}

// Set implements httpcache.Cache.
func (s *Store) Set(key string, data []byte) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.cacheKeyToObjectKey(key)),
		Body:   bytes.NewReader(data),
	}

	if s.gzip {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(data); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("s3store cache gzip failed")
			return
		}
		if err := gw.Close(); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("s3store cache gzip close failed")
			return
		}
		input.Body = &buf
		input.ContentEncoding = aws.String("gzip")
	}

	if _, err := s.Client.PutObject(s.ctx, input); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("s3store cache set failed")
	}
}

// Delete implements httpcache.Cache.
func (s *Store) Delete(key string) {
	_, err := s.Client.DeleteObject(s.ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.cacheKeyToObjectKey(key)),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("s3store cache delete failed")
	}
}

// cache keys are arbitrary URLs; hash them into a flat namespace distinct
// from the plain-key objects
func (s *Store) cacheKeyToObjectKey(key string) string {
	const pathPrefix = "webcache"

	h := md5.New()
	io.WriteString(h, key)
	objKey := fmt.Sprintf("%v/%v", pathPrefix, hex.EncodeToString(h.Sum(nil)))
	if s.gzip {
		objKey += ".gz"
	}

	return objKey
}
